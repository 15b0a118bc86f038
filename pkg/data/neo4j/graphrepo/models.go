package graphrepo

// Node and relationship vocabulary of the persisted transfer graph.
//
// Every address becomes one (:User) node, created at most once across the
// lifetime of the graph; the type property records whether the address was
// first observed as a sender or a receiver and is informational only, never
// part of the uniqueness key. Each transfer event becomes one directed
// TRANSFER relationship from sender to receiver; edges are deliberately not
// deduplicated.
const (
	// NodeTypeFrom marks addresses first observed as senders.
	NodeTypeFrom = "from"
	// NodeTypeTo marks addresses first observed as receivers.
	NodeTypeTo = "to"
)

const (
	matchUserCypher  = `MATCH (u:User {address: $address}) RETURN u`
	createUserCypher = `CREATE (u:User {address: $address, type: $type}) RETURN u`

	// The RETURN clause makes a zero-row result observable: when either
	// endpoint is missing the MATCH produces nothing and no edge is created.
	createTransferCypher = `MATCH (from:User {address: $from}), (to:User {address: $to}) ` +
		`CREATE (from)-[r:TRANSFER {tokenId: $tokenId, contractAddress: $contractAddress, ` +
		`gasPrice: $gasPrice, gasUsed: $gasUsed}]->(to) RETURN type(r)`
)
