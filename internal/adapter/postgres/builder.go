package postgres

import "github.com/Masterminds/squirrel"

// Builder returns a statement builder configured for PostgreSQL ($N)
// placeholders. All repositories build their SQL through it.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
