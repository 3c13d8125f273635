package authorization

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"

	adminkeydomain "github.com/appoetlabs/appoet/internal/adminkey/domain"
)

// Objects and actions the admin surface is carved into. Scopes are the
// casbin subjects; an admin key is allowed when any of its scopes grants
// the object/action pair.
const (
	ObjectOrders   = "orders"
	ObjectRequests = "requests"
	ObjectTiers    = "tiers"
	ObjectKeys     = "keys"

	ActionRead  = "read"
	ActionWrite = "write"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// policies maps each scope onto the object/action pairs it grants.
var policies = [][]string{
	{adminkeydomain.ScopeOrdersRead, ObjectOrders, ActionRead},
	{adminkeydomain.ScopeRequestsRead, ObjectRequests, ActionRead},
	{adminkeydomain.ScopeRequestsWrite, ObjectRequests, ActionRead},
	{adminkeydomain.ScopeRequestsWrite, ObjectRequests, ActionWrite},
	{adminkeydomain.ScopeTiersWrite, ObjectTiers, ActionRead},
	{adminkeydomain.ScopeTiersWrite, ObjectTiers, ActionWrite},
	{adminkeydomain.ScopeKeysAdmin, ObjectKeys, ActionRead},
	{adminkeydomain.ScopeKeysAdmin, ObjectKeys, ActionWrite},
}

type Authorizer struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

func New(log *zap.Logger) (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	for _, p := range policies {
		if _, err := enforcer.AddPolicy(p[0], p[1], p[2]); err != nil {
			return nil, err
		}
	}

	return &Authorizer{
		enforcer: enforcer,
		log:      log.Named("authorization"),
	}, nil
}

// Allowed reports whether any of the scopes grants the action on the object.
func (a *Authorizer) Allowed(scopes []string, object, action string) bool {
	for _, scope := range scopes {
		ok, err := a.enforcer.Enforce(scope, object, action)
		if err != nil {
			a.log.Error("policy evaluation failed",
				zap.String("scope", scope),
				zap.String("object", object),
				zap.String("action", action),
				zap.Error(err))
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
