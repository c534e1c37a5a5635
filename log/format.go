// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
)

// appendValue renders a terminal attribute value, quoting strings that need it.
func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendEscaped(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, timeFormat)
	}

	switch x := v.Any().(type) {
	case nil:
		return append(buf, "<nil>"...)
	case error:
		return appendEscaped(buf, x.Error())
	case *big.Int, *uint256.Int, fmt.Stringer:
		return appendEscaped(buf, stringify(x))
	case time.Time:
		return x.AppendFormat(buf, timeFormat)
	default:
		return appendEscaped(buf, fmt.Sprintf("%+v", x))
	}
}

func appendEscaped(buf []byte, s string) []byte {
	if s == "" || strings.ContainsAny(s, " =\"\t\r\n") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}
