package repository

import (
	"fmt"
	"strconv"
	"strings"
)

// reviewColumns is the read projection. ownership_token_hash is deliberately
// absent so no read path can surface it.
const reviewColumns = `id, author, product, rating, content, created_at`

// dialect captures the SQL differences between the two stores.
type dialect struct {
	placeholder func(n int) string
	likeOp      string
}

var (
	postgresDialect = dialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		likeOp:      "ILIKE",
	}
	// SQLite LIKE is already case-insensitive for ASCII.
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		likeOp:      "LIKE",
	}
)

// buildListWhere builds the free-text filter across author, product and
// content. startArg is the number of the first placeholder.
func buildListWhere(params ListParams, startArg int, d dialect) (string, []any) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return "", nil
	}

	pattern := "%" + escapeLike(query) + "%"

	var conditions []string
	var args []any
	argNum := startArg
	for _, column := range []string{"author", "product", "content"} {
		conditions = append(conditions,
			fmt.Sprintf("%s %s %s ESCAPE '\\'", column, d.likeOp, d.placeholder(argNum)))
		args = append(args, pattern)
		argNum++
	}

	return "WHERE (" + strings.Join(conditions, " OR ") + ")", args
}

// buildOrderBy maps a sort key onto a whitelisted ORDER BY. Ties always
// fall back to newest first and then id, so paging is deterministic.
func buildOrderBy(sort string) string {
	switch sort {
	case SortOldest:
		return "ORDER BY created_at ASC, id ASC"
	case SortRatingDesc:
		return "ORDER BY rating DESC, created_at DESC, id DESC"
	case SortRatingAsc:
		return "ORDER BY rating ASC, created_at DESC, id DESC"
	default:
		return "ORDER BY created_at DESC, id DESC"
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
