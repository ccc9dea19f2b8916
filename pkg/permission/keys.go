package permission

import "strings"

// DeriveKeys flattens permissions into deduplicated UI-facing keys used by
// clients to toggle affordances. The output is advisory only; it never
// replaces a guard evaluation.
//
// For each permission the resource is normalized (":" replaced with ".",
// lowercased). A "*" resource emits the bare "*". Every action emits
// "<resource>.<action>", and manage additionally emits "<resource>.*".
// A permission without actions emits the normalized resource alone.
// First-seen order is preserved.
func DeriveKeys(perms []Permission) []string {
	seen := make(map[string]struct{}, len(perms)*2)
	keys := make([]string, 0, len(perms)*2)

	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	for _, p := range perms {
		resource := normalizeResource(p.Resource)
		if resource == "" {
			continue
		}

		if resource == WildcardResource {
			add(WildcardResource)
			continue
		}

		if len(p.Actions) == 0 {
			add(resource)
			continue
		}

		for _, action := range p.Actions {
			add(resource + "." + string(action))
			if action == ActionManage {
				add(resource + ".*")
			}
		}
	}

	return keys
}

// normalizeResource maps legacy colon-delimited resource identifiers onto
// the dot-delimited form clients expect.
func normalizeResource(resource string) string {
	return strings.ToLower(strings.ReplaceAll(resource, ":", "."))
}
