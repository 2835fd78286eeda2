package locale

// SwitchHref builds the href for switching the current page to the target
// locale while preserving the rest of the path and query.
//
// If the pathname begins with a recognized locale prefix, that prefix is
// replaced; otherwise the target locale is prepended. The query string is
// appended verbatim when non-empty: no re-ordering, no re-encoding.
func SwitchHref(pathname, rawQuery string, target Locale) string {
	href := "/" + target.String()
	if _, internal, ok := SplitPrefix(pathname); ok {
		if internal != "/" {
			href += internal
		}
	} else if pathname != "/" && pathname != "" {
		href += pathname
	}
	if rawQuery != "" {
		href += "?" + rawQuery
	}
	return href
}
