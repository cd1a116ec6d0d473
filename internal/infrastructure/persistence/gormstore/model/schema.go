package model

// All lists every table for schema migration, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Review{},
		&Report{},
		&ModerationStrike{},
		&SuspensionAppeal{},
		&Follow{},
		&Notification{},
		&CacheEntry{},
	}
}
