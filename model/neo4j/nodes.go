// api/model/neo4j/nodes.go
package schedly_neo4j

// Node Labels
const (
	// LabelOrganization represents a tenant in the system
	LabelOrganization = "Organization"

	// LabelTeam represents a team within an organization
	LabelTeam = "Team"

	// LabelUser represents a user in the system
	LabelUser = "User"
)
