package model

// All lists every table the migrate command and tests create.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Case{},
		&Document{},
		&AuditLog{},
	}
}
