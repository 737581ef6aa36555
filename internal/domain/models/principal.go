package models

// Principal is the resolved identity of the caller, built once per request
// by the auth middleware after the token subject has been looked up. UserID
// doubles as the tenant key scoping every todo query.
type Principal struct {
	UserID int64
	Name   string
	Email  string
}
