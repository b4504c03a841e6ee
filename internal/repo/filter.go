package repo

import (
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tripplanner/backend/internal/domain"
)

// MongoFilter translates a TripFilter into a MongoDB query document.
//
//   - Destination: case-insensitive substring of destination.
//   - Search: case-insensitive substring of title OR destination.
//   - MinBudget / MaxBudget: inclusive range on budget.
//
// Top-level keys are ANDed by MongoDB, so Search never widens Destination.
// User text is regex-escaped; it is always matched literally.
func MongoFilter(f domain.TripFilter) bson.D {
	filter := bson.D{}

	if f.Destination != "" {
		filter = append(filter, bson.E{Key: "destination", Value: containsRegex(f.Destination)})
	}

	if f.Search != "" {
		re := containsRegex(f.Search)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "destination", Value: re}},
		}})
	}

	budget := bson.D{}
	if f.MinBudget != nil {
		budget = append(budget, bson.E{Key: "$gte", Value: *f.MinBudget})
	}
	if f.MaxBudget != nil {
		budget = append(budget, bson.E{Key: "$lte", Value: *f.MaxBudget})
	}
	if len(budget) > 0 {
		filter = append(filter, bson.E{Key: "budget", Value: budget})
	}

	return filter
}

// mongoSort orders results newest first. createdAt is stored at millisecond
// precision, so _id (which embeds a per-process counter) breaks ties.
var mongoSort = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// SQLWhere translates a TripFilter into a WHERE clause (with leading space) and
// its named arguments. An empty filter yields an empty clause.
func SQLWhere(f domain.TripFilter) (string, pgx.NamedArgs) {
	var clauses []string
	args := pgx.NamedArgs{}

	if f.Destination != "" {
		clauses = append(clauses, "destination ILIKE @destination")
		args["destination"] = likePattern(f.Destination)
	}
	if f.Search != "" {
		clauses = append(clauses, "(title ILIKE @search OR destination ILIKE @search)")
		args["search"] = likePattern(f.Search)
	}
	if f.MinBudget != nil {
		clauses = append(clauses, "budget >= @min_budget")
		args["min_budget"] = *f.MinBudget
	}
	if f.MaxBudget != nil {
		clauses = append(clauses, "budget <= @max_budget")
		args["max_budget"] = *f.MaxBudget
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// likeEscaper escapes LIKE metacharacters using Postgres' default escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring ILIKE match.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
