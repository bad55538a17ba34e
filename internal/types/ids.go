// README: Identifier type shared by all records.
package types

type ID string

func (id ID) String() string { return string(id) }
