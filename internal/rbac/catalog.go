package rbac

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the static, immutable role → permission grant table. It is
// constructed once at startup and injected into the Engine; it has no
// mutation API and is safe for concurrent reads.
type Catalog struct {
	grants map[Role]map[Permission]struct{}
	all    map[Permission]struct{}
}

// NewCatalog builds a catalog from an explicit grant table. The full
// permission set is the union of extra and every granted permission, so
// the admin grant set (derived from AllPermissions) can never drift.
func NewCatalog(grants map[Role][]Permission, extra ...Permission) *Catalog {
	c := &Catalog{
		grants: make(map[Role]map[Permission]struct{}, len(grants)),
		all:    make(map[Permission]struct{}),
	}
	for role, perms := range grants {
		role = Canonical(string(role))
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
			c.all[p] = struct{}{}
		}
		c.grants[role] = set
	}
	for _, p := range extra {
		c.all[p] = struct{}{}
	}
	return c
}

type catalogFile struct {
	Permissions []Permission          `yaml:"permissions"`
	Grants      map[Role][]Permission `yaml:"grants"`
}

// LoadCatalog parses a YAML grant table (see catalog.yaml for the
// format). Permissions granted to a role but missing from the
// permissions list are still part of the catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse permission catalog: %w", err)
	}
	return NewCatalog(f.Grants, f.Permissions...), nil
}

// DefaultCatalog loads the embedded grant table the process ships with.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(defaultCatalogYAML)
}

// PermissionsOf returns the explicit grant set for a role, sorted for
// determinism. Unknown roles get an empty set; absence of grants is the
// safe default. Note this is the raw table: the admin bypass lives in
// Engine.HasPermission, so PermissionsOf(RoleAdmin) is empty.
func (c *Catalog) PermissionsOf(role Role) []Permission {
	set := c.grants[Canonical(string(role))]
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// AllPermissions returns every permission the catalog knows about,
// sorted. The admin grant set is defined as exactly this list.
func (c *Catalog) AllPermissions() []Permission {
	perms := make([]Permission, 0, len(c.all))
	for p := range c.all {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

func (c *Catalog) has(role Role, p Permission) bool {
	_, ok := c.grants[role][p]
	return ok
}
