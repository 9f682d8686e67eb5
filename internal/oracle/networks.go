package oracle

import "slices" // Dev chain lookup

// Network describes a chain with a known ETH/USD feed
type Network struct {
	Name       string
	ETHUSDFeed string
}

// Networks maps chain id to its ETH/USD aggregator
var Networks = map[int64]Network{
	11155111: {Name: "sepolia", ETHUSDFeed: "0x694AA1769357215DE4FAC081bf1f309aDC325306"},
	137:      {Name: "polygon", ETHUSDFeed: "0xF9680D99D6C9589e2a93a78A04A279e509205945"},
}

// DevChains are local networks that run against a mock feed
var DevChains = []string{"hardhat", "localhost"}

// IsDevChain reports whether name is a local development network
func IsDevChain(name string) bool {
	return slices.Contains(DevChains, name)
}

// FeedAddress looks up the configured feed for a chain id
func FeedAddress(chainID int64) (string, bool) {
	n, ok := Networks[chainID]
	return n.ETHUSDFeed, ok
}
