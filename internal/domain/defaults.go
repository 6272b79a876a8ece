package domain

// Default owned entities created for every new user, so a fresh account
// is immediately usable. Creation happens in the same transaction as the
// user row; see the user service.

// DefaultCategoryNames lists the categories bootstrapped at registration.
func DefaultCategoryNames() []string {
	return []string{"Today", "Tomorrow", "Nearest time"}
}

// DefaultTagSpec pairs a bootstrap tag name with its display color.
type DefaultTagSpec struct {
	Name  string
	Color string
}

// DefaultTags lists the tags bootstrapped at registration.
func DefaultTags() []DefaultTagSpec {
	return []DefaultTagSpec{
		{Name: "Important", Color: TagColorYellow},
		{Name: "Deadline", Color: TagColorPink},
		{Name: "Family", Color: TagColorGreen},
	}
}
