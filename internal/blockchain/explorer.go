package blockchain

import (
	"fmt"
	"strings"
)

// TxURL builds an explorer link for signature. Both explorer.solana.com and
// solscan.io take the cluster as a query parameter; mainnet needs none.
func TxURL(explorerBase, signature, cluster string) string {
	link := fmt.Sprintf("%s/tx/%s", strings.TrimRight(explorerBase, "/"), signature)
	if cluster != "" && cluster != "mainnet-beta" {
		link += "?cluster=" + cluster
	}
	return link
}
