package schema

// Filter is a named query filter. Its value is converted with ValueOf.
type Filter struct {
	Name  string
	Value interface{}
}

// Query is an ordered list of filters
type Query []Filter

// F builds a filter
func F(name string, value interface{}) Filter {
	return Filter{Name: name, Value: value}
}

// NewQuery builds a query from filters
func NewQuery(filters ...Filter) Query {
	return Query(filters)
}

// With returns a copy of this query with an extra filter
func (q Query) With(name string, value interface{}) Query {
	c := make(Query, 0, len(q)+1)
	c = append(c, q...)
	return append(c, F(name, value))
}
