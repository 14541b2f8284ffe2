package models

// Update is a tagged update descriptor applied atomically by the store:
// Set writes fields, Unset removes them, Push appends to array fields,
// Inc adds to numeric fields server-side. Ad hoc $set/$unset literals
// are never built outside the repository.
type Update struct {
	Set   map[string]any
	Unset []string
	Push  map[string]any
	Inc   map[string]int
}

func NewUpdate() *Update {
	return &Update{Set: map[string]any{}}
}

func (u *Update) SetField(field string, value any) *Update {
	u.Set[field] = value
	return u
}

func (u *Update) UnsetField(fields ...string) *Update {
	u.Unset = append(u.Unset, fields...)
	return u
}

func (u *Update) PushField(field string, value any) *Update {
	if u.Push == nil {
		u.Push = map[string]any{}
	}
	u.Push[field] = value
	return u
}

func (u *Update) IncField(field string, delta int) *Update {
	if u.Inc == nil {
		u.Inc = map[string]int{}
	}
	u.Inc[field] += delta
	return u
}

func (u *Update) Empty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0 && len(u.Push) == 0 && len(u.Inc) == 0
}
