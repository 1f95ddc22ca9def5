package billing

import "github.com/mvdwalt/sidebill/internal/domain/entity"

// migration maps a stored invoice at a given schema version to the current
// in-memory shape.
type migration func(entity.Invoice) entity.Invoice

// migrations is keyed by the stored schemaVersion. Version 1 is current, so
// its entry is the identity. When version 2 lands, bump
// entity.SchemaVersion, make 2 the identity and turn 1 into the upgrade.
var migrations = map[int]migration{
	1: func(inv entity.Invoice) entity.Invoice { return inv },
}

// migrate maps any stored invoice shape to the current one, invoked once per
// invoice at load time. Unversioned or unknown-version invoices are
// normalized through the entity defaults, which fill every absent field.
func migrate(inv entity.Invoice) entity.Invoice {
	step, ok := migrations[inv.SchemaVersion]
	if !ok {
		inv = entity.NewInvoice(inv)
	} else {
		inv = step(inv)
	}
	inv.SchemaVersion = entity.SchemaVersion
	return inv
}
