package client

import "strings"

// Query is a composed selection expression in the service's query syntax.
// Built with Field(...).Equal(...) / InComparison(...) and combined with
// And; the zero value is the empty query.
type Query struct {
	expr string
}

// Cond is a query condition under construction for one field.
type Cond struct {
	field string
}

// Field starts a condition on the named field.
func Field(name string) Cond {
	return Cond{field: name}
}

// Equal matches records whose field equals the given value.
func (c Cond) Equal(value string) Query {
	return Query{expr: c.field + " EQ ^" + value + "^"}
}

// InComparison matches records whose field equals any of the given values.
func (c Cond) InComparison(values []string) Query {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "^" + v + "^"
	}
	return Query{expr: c.field + " IN " + strings.Join(quoted, ",")}
}

// And conjoins two queries. An empty side is dropped.
func (q Query) And(other Query) Query {
	switch {
	case q.expr == "":
		return other
	case other.expr == "":
		return q
	default:
		return Query{expr: q.expr + ";" + other.expr}
	}
}

// Empty reports whether the query has no conditions.
func (q Query) Empty() bool { return q.expr == "" }

// String renders the expression as the quoted query parameter value.
func (q Query) String() string {
	if q.expr == "" {
		return ""
	}
	return `"` + q.expr + `"`
}
