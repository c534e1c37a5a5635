// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import "github.com/gigstream/gigstream/metrics"

var (
	metricBlockCounter = metrics.LazyLoadCounterVec("chain_block_count", []string{"type"})
	metricBlockHeight  = metrics.LazyLoadGauge("chain_best_block_number")
)
