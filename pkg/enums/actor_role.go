package enums

// ActorRole identifies who is requesting a purchase transition relative to
// the order. Buyer and seller are derived from the authenticated user;
// system is reserved for internal reconciliation writers.
type ActorRole string

const (
	ActorRoleBuyer  ActorRole = "buyer"
	ActorRoleSeller ActorRole = "seller"
	ActorRoleSystem ActorRole = "system"
)

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}
