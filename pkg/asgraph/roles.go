package asgraph

// Role is the topological category of an AS
type Role uint8

const (
	EnterpriseCustomer Role = iota
	SmallTransitProvider
	LargeTransitProvider
	ContentAccessHostingProvider

	// NumRoles is the number of role categories
	NumRoles = 4
)

// Roles lists every role in report order
var Roles = [NumRoles]Role{
	EnterpriseCustomer,
	SmallTransitProvider,
	LargeTransitProvider,
	ContentAccessHostingProvider,
}

// Customer-count thresholds of the role table
const (
	smallTransitMinCustomers = 3
	peerHeavyMaxCustomers    = 47
	largeTransitMinCustomers = 180
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case EnterpriseCustomer:
		return "Enterprise Customer"
	case SmallTransitProvider:
		return "Small Transit Provider"
	case LargeTransitProvider:
		return "Large Transit Provider"
	case ContentAccessHostingProvider:
		return "Content/Access/Hosting Provider"
	default:
		return "Unknown"
	}
}

// RoleFor classifies an AS from its customer and peer counts
func RoleFor(customers, peers int) Role {
	switch {
	case customers < smallTransitMinCustomers:
		if peers <= 1 {
			return EnterpriseCustomer
		}
		return ContentAccessHostingProvider
	case customers <= peerHeavyMaxCustomers:
		if peers < 4 {
			return SmallTransitProvider
		}
		return ContentAccessHostingProvider
	case customers < largeTransitMinCustomers:
		return SmallTransitProvider
	default:
		return LargeTransitProvider
	}
}

func classifyRoles(neighbors AdjacencyMap, rel Relationships) [NumRoles]ASSet {
	var roles [NumRoles]ASSet
	for i := range roles {
		roles[i] = make(ASSet)
	}
	for v := range neighbors {
		r := RoleFor(rel.Customers.Degree(v), rel.Peers.Degree(v))
		roles[r].Add(v)
	}
	return roles
}
