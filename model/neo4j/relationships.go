// api/model/neo4j/relationships.go
package schedly_neo4j

// Relationship Types
const (
	// RelMemberOf represents a membership: (User)-[:MEMBER_OF {role, accepted}]->(Organization|Team)
	RelMemberOf = "MEMBER_OF"

	// RelPartOf represents the relationship between a team and its organization
	RelPartOf = "PART_OF"
)
