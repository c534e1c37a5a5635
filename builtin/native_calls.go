// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"time"

	"github.com/gigstream/gigstream/abi"
	"github.com/gigstream/gigstream/builtin/gascharger"
	"github.com/gigstream/gigstream/builtin/reverts"
	"github.com/gigstream/gigstream/gig"
	"github.com/gigstream/gigstream/metrics"
	"github.com/gigstream/gigstream/xenv"
)

var (
	metricNativeCalls    = metrics.LazyLoadCounterVec("native_calls_count", []string{"contract", "method", "result"})
	metricNativeDuration = metrics.LazyLoadHistogramVec("native_call_duration_ms", []string{"contract", "method"}, metrics.Bucket10s)
)

type addressAndMethodID struct {
	gig.Address
	abi.MethodID
}

type nativeMethod struct {
	contract *contract
	abi      *abi.Method
	run      func(env *xenv.Environment) []any
}

var (
	nativeMethods  = make(map[addressAndMethodID]*nativeMethod)
	nativeReceives = make(map[gig.Address]*nativeMethod)
)

// FindNativeCall resolves the native implementation for a call of input on to.
// Empty input selects the receive function, if the contract has one.
func FindNativeCall(to gig.Address, input []byte) (*abi.Method, func(env *xenv.Environment) []any, bool) {
	if len(input) == 0 {
		if m, ok := nativeReceives[to]; ok {
			return m.abi, m.run, true
		}
		return nil, nil, false
	}
	methodID, err := abi.ExtractMethodID(input)
	if err != nil {
		return nil, nil, false
	}
	m, ok := nativeMethods[addressAndMethodID{to, methodID}]
	if !ok {
		return nil, nil, false
	}
	return m.abi, m.run, true
}

// IsBuiltin returns whether addr is the address of a builtin contract.
func IsBuiltin(addr gig.Address) bool {
	for _, c := range Contracts {
		if c.Address == addr {
			return true
		}
	}
	return false
}

// register binds run to the named method of c.
// The run function panics with the ledger error, which the environment turns into a revert.
func (c *contract) register(name string, run func(env *xenv.Environment, charger *gascharger.Charger) []any) {
	var method *abi.Method
	if name == "receive" {
		m, ok := c.ABI.Receive()
		if !ok {
			panic("receive not found: " + c.name)
		}
		method = m
	} else {
		m, ok := c.ABI.MethodByName(name)
		if !ok {
			panic("method not found: " + c.name + "." + name)
		}
		method = m
	}

	native := &nativeMethod{
		contract: c,
		abi:      method,
		run: func(env *xenv.Environment) []any {
			start := time.Now()
			result := "ok"
			defer func() {
				if e := recover(); e != nil {
					result = "error"
					if err, ok := e.(error); ok && reverts.IsRevertErr(err) {
						result = "reverted"
					}
					observe(c.name, name, result, start)
					panic(e)
				}
				observe(c.name, name, result, start)
			}()
			return run(env, gascharger.New(env))
		},
	}
	if name == "receive" {
		nativeReceives[c.Address] = native
	} else {
		nativeMethods[addressAndMethodID{c.Address, method.ID()}] = native
	}
}

func observe(contract, method, result string, start time.Time) {
	metricNativeCalls().AddWithLabel(1, map[string]string{"contract": contract, "method": method, "result": result})
	metricNativeDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"contract": contract, "method": method})
}

// check panics with err, as natives report failures by panicking.
func check(err error) {
	if err != nil {
		panic(err)
	}
}
