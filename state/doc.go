// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages account balances and contract storage.
// It follows the flow as below:
//
//	         o
//	         |
//	[ revertable state ]
//	         |
//	  [ stacked map ] -> [ journal ] -> [ stage ] -> [ kv bulk ]
//	         |
//	   [ read cache ]
//	         |
//	   [ kv store ]
//
// Unlike a trie backed state it keeps only the latest version, which is all a
// single sequencer needs.
package state
