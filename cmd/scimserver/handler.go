package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	scim "github.com/nlstn/go-scim"
	"github.com/nlstn/go-scim/filter"
	"github.com/nlstn/go-scim/internal/attr"
	"github.com/nlstn/go-scim/internal/observability"
	"github.com/nlstn/go-scim/internal/sqlfilter"
	"gorm.io/gorm"
)

// defaultPageSize bounds responses when the client sends no count.
const defaultPageSize = 100

// listResponse is the RFC 7644 section 3.4.2 list response envelope.
type listResponse struct {
	Schemas      []string   `json:"schemas"`
	TotalResults int64      `json:"totalResults"`
	StartIndex   int        `json:"startIndex"`
	ItemsPerPage int        `json:"itemsPerPage"`
	Resources    []scimUser `json:"Resources"`
}

func listUsersHandler(db *gorm.DB, logger *slog.Logger, obs *observability.Config) http.HandlerFunc {
	userType := attr.CoreUser()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		ctx, span := obs.Tracer().StartListRequest(r.Context())
		defer span.End()

		log := observability.LoggerWithTrace(ctx, logger)

		req, err := scim.ParseListRequest(r.URL.Query())
		if err != nil {
			log.Warn("rejected list request", "error", err)
			obs.Tracer().RecordError(span, err)
			scim.WriteError(w, err)
			return
		}

		count := -1
		if req.Count != nil {
			count = *req.Count
		}
		filterText := ""
		if obs.FilterTextEnabled() {
			filterText = r.URL.Query().Get("filter")
		}
		obs.Tracer().AddListOptions(span, filterText, r.URL.Query().Get("sortBy"), string(req.SortOrder), req.StartIndex, count)

		query := db.WithContext(ctx).Model(&User{})

		translateStart := time.Now()
		timing := observability.StartServerTiming(ctx, "translate")
		query, err = sqlfilter.Apply(query, req.Filter, userType)
		timing.Stop()
		obs.Metrics().RecordTranslate(ctx, db.Dialector.Name(), time.Since(translateStart), err)
		if err != nil {
			log.Warn("filter cannot be translated", "error", err)
			obs.Tracer().RecordError(span, err)
			scim.WriteError(w, &scim.ScimError{
				Status: http.StatusBadRequest,
				Type:   scim.ScimTypeInvalidFilter,
				Detail: "invalid filter",
				Err:    err,
			})
			return
		}

		query, err = applySort(query, req, userType)
		if err != nil {
			log.Warn("rejected sort", "error", err)
			scim.WriteError(w, err)
			return
		}

		var total int64
		if err := query.Count(&total).Error; err != nil {
			log.Error("count failed", "error", err)
			scim.WriteError(w, err)
			return
		}

		limit := defaultPageSize
		if req.Count != nil {
			limit = *req.Count
		}

		var rows []User
		err = query.
			Preload("Emails").
			Preload("PhoneNumbers").
			Offset(req.StartIndex - 1).
			Limit(limit).
			Find(&rows).Error
		if err != nil {
			log.Error("query failed", "error", err)
			scim.WriteError(w, err)
			return
		}

		resources := make([]scimUser, 0, len(rows))
		for i := range rows {
			resources = append(resources, rows[i].toSCIM())
		}

		obs.Metrics().RecordResultCount(ctx, userType.Name, int64(len(resources)))
		obs.Metrics().RecordRequest(ctx, userType.Name, "list", http.StatusOK, time.Since(start))
		obs.Tracer().SetHTTPStatus(ctx, http.StatusOK)

		reportDBTime(ctx)
		w.Header().Set("Content-Type", "application/scim+json")
		if err := json.NewEncoder(w).Encode(listResponse{
			Schemas:      []string{scim.ListResponseSchema},
			TotalResults: total,
			StartIndex:   req.StartIndex,
			ItemsPerPage: len(resources),
			Resources:    resources,
		}); err != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}

// applySort orders the query by the parsed sortBy path. Multi-valued
// attributes have no single sort key and are rejected.
func applySort(query *gorm.DB, req *scim.ListRequest, rt *attr.ResourceType) (*gorm.DB, error) {
	if req.SortBy == nil {
		return query.Order("id"), nil
	}

	path, ok := req.SortBy.(*filter.AttributePath)
	if !ok {
		return nil, &scim.ScimError{
			Status: http.StatusBadRequest,
			Type:   scim.ScimTypeInvalidPath,
			Detail: "sortBy must name a plain attribute",
		}
	}

	if _, err := rt.Resolve(*path); err != nil {
		return nil, &scim.ScimError{
			Status: http.StatusBadRequest,
			Type:   scim.ScimTypeInvalidPath,
			Detail: "invalid sortBy",
			Err:    err,
		}
	}

	parent, err := rt.Resolve(filter.AttributePath{Schema: path.Schema, Names: path.Names[:1]})
	if err == nil && parent.MultiValued {
		return nil, &scim.ScimError{
			Status: http.StatusBadRequest,
			Type:   scim.ScimTypeInvalidPath,
			Detail: "cannot sort by a multi-valued attribute",
		}
	}

	parts := make([]string, len(path.Names))
	for i, name := range path.Names {
		parts[i] = attr.ColumnName(name)
	}
	column := strings.Join(parts, "_")

	if req.SortOrder == scim.SortDescending {
		return query.Order(column + " DESC"), nil
	}
	return query.Order(column), nil
}

// reportDBTime flushes the request's accumulated database time into the
// Server-Timing header. Must run before the response is written.
func reportDBTime(ctx context.Context) {
	timing := servertiming.FromContext(ctx)
	acc := observability.DBTimeAccumulatorFromContext(ctx)
	if timing == nil || acc == nil {
		return
	}
	if d := acc.Duration(); d > 0 {
		metric := timing.NewMetric("db").WithDesc("database")
		metric.Duration = d
	}
}
