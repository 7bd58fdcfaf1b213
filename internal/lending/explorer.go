package lending

import "fmt"

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkDevnet  = "devnet"
)

// ExplorerHost returns the SuiVision host for a network.
func ExplorerHost(network string) string {
	switch network {
	case NetworkMainnet:
		return "suivision.xyz"
	case NetworkDevnet:
		return "devnet.suivision.xyz"
	default:
		return "testnet.suivision.xyz"
	}
}

// ExplorerURL links to a committed transaction.
func ExplorerURL(host, digest string) string {
	return fmt.Sprintf("https://%s/txblock/%s", host, digest)
}
