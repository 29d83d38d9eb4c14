package globaltable

import (
	"fmt"

	"github.com/google/uuid"
)

// Region is either a concrete region name or an opaque deployment-time token.
// Tokens cannot be compared against region names or used as registry keys;
// operations that need a concrete value reject them with a ReferenceError.
//
// The zero value is an unresolved token.
type Region struct {
	id       string
	resolved bool
}

// RegionName wraps a concrete region value such as "us-east-1".
func RegionName(name string) Region {
	return Region{id: name, resolved: true}
}

// UnresolvedRegion returns an opaque token standing in for a region that is
// not known at configuration time. Each token has its own identity, so two
// tokens never compare equal.
func UnresolvedRegion() Region {
	return Region{id: uuid.NewString()}
}

// Unresolved reports whether the region is an opaque token.
func (r Region) Unresolved() bool {
	return !r.resolved
}

func (r Region) String() string {
	if r.resolved {
		return r.id
	}
	return fmt.Sprintf("${Token[region.%s]}", r.id)
}
