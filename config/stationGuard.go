package config

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/fuelstation_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StationGuardPlugin enforces multi-tenant isolation by automatically scoping
// queries/updates/deletes to the request's station_id when the model has a station_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include station_id manually.
// - Admin/internal bypass is explicit via context flags.
type StationGuardPlugin struct{}

func NewStationGuardPlugin() *StationGuardPlugin { return &StationGuardPlugin{} }

func (p *StationGuardPlugin) Name() string { return "station_guard" }

func (p *StationGuardPlugin) Initialize(db *gorm.DB) error {
	// Query
	if err := db.Callback().Query().Before("gorm:query").Register("station_guard:query", stationGuardCallback); err != nil {
		return err
	}
	// Row (First/Take)
	if err := db.Callback().Row().Before("gorm:row").Register("station_guard:row", stationGuardCallback); err != nil {
		return err
	}
	// Update
	if err := db.Callback().Update().Before("gorm:update").Register("station_guard:update", stationGuardCallback); err != nil {
		return err
	}
	// Delete
	if err := db.Callback().Delete().Before("gorm:delete").Register("station_guard:delete", stationGuardCallback); err != nil {
		return err
	}
	return nil
}

func stationGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassStationScope(ctx) {
		return
	}
	stationID := stationIdFromContext(ctx)
	if stationID == "" {
		return
	}

	// Only apply if the current model/table includes a station_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasStationID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "station_id") {
			hasStationID = true
			break
		}
	}
	if !hasStationID {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasStationID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "station_id"},
				Value:  stationID,
			},
		},
	})
}

func stationIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyStationId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassStationScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeySkipStationScope).(bool); ok && v {
		return true
	}
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasStationID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasStationID(e) {
			return true
		}
	}
	return false
}

func exprHasStationID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsStationID(v.Column)
	case clause.Neq:
		return colIsStationID(v.Column)
	case clause.Gt:
		return colIsStationID(v.Column)
	case clause.Gte:
		return colIsStationID(v.Column)
	case clause.Lt:
		return colIsStationID(v.Column)
	case clause.Lte:
		return colIsStationID(v.Column)
	case clause.IN:
		return colIsStationID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasStationID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasStationID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "station_id")
	default:
		return false
	}
}

func colIsStationID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "station_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "station_id")
	default:
		return false
	}
}
