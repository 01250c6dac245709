package resolvers

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	gqlmodels "gaugetrack.GO/graphql/models"
	entity "gaugetrack.GO/model/entity"
	gaugeRepo "gaugetrack.GO/model/repository/gauge"
	historyRepo "gaugetrack.GO/model/repository/history"
	"gaugetrack.GO/service/lifecycle"
)

// Resolver wires repositories to the read-only query surface.
type Resolver struct {
	db            *gorm.DB
	GaugeRepo     *gaugeRepo.GaugeRepository
	HistoryRepo   *historyRepo.HistoryRepository
	SearchService *SearchService
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		db:            db,
		GaugeRepo:     gaugeRepo.GetGaugeRepository(db),
		HistoryRepo:   historyRepo.NewHistoryRepository(db),
		SearchService: GetSearchService(),
	}
}

func (r *Resolver) Query() *queryResolver {
	return &queryResolver{Resolver: r}
}

type queryResolver struct {
	*Resolver
}

// Gauge returns one gauge by display identifier (member or single-gauge id).
func (r *queryResolver) Gauge(ctx context.Context, externalID string) (*gqlmodels.Gauge, error) {
	g, err := r.GaugeRepo.ByExternalID(externalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return toGauge(g), nil
}

// Set rebuilds the derived set detail from member snapshots.
func (r *queryResolver) Set(ctx context.Context, setID string) (*gqlmodels.SetDetail, error) {
	members, err := r.GaugeRepo.AllSetMembers(setID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	return buildSetDetail(setID, members), nil
}

// SetHistory returns the full ledger for a set, oldest first.
func (r *queryResolver) SetHistory(ctx context.Context, setID string) ([]*gqlmodels.HistoryEntry, error) {
	entries, err := r.HistoryRepo.ForSet(setID)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.HistoryEntry, 0, len(entries))
	for i := range entries {
		out = append(out, toHistoryEntry(&entries[i]))
	}
	return out, nil
}

// Spares lists the spare pool, optionally narrowed to a category.
func (r *queryResolver) Spares(ctx context.Context, categoryID *int32, pageSize, currentPage int) ([]*gqlmodels.Gauge, error) {
	f := gaugeRepo.ListFilter{
		SparesOnly: true,
		Limit:      pageSize,
		Offset:     (currentPage - 1) * pageSize,
	}
	if categoryID != nil {
		f.CategoryID = uint(*categoryID)
	}
	rows, err := r.GaugeRepo.List(f)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Gauge, 0, len(rows))
	for _, g := range rows {
		out = append(out, toGauge(g))
	}
	return out, nil
}

func buildSetDetail(setID string, members []*entity.Gauge) *gqlmodels.SetDetail {
	detail := &gqlmodels.SetDetail{SetID: setID}
	live := make([]*entity.Gauge, 0, len(members))
	for _, m := range members {
		detail.Members = append(detail.Members, toGauge(m))
		if m.DeletedAt == nil {
			live = append(live, m)
		}
	}

	var status lifecycle.SetStatus
	var seal string
	switch {
	case len(live) == 2:
		status = lifecycle.CompositeStatus(live[0], live[1])
		seal = lifecycle.CompositeSeal(live[0], live[1])
	case len(live) == 1:
		detail.Incomplete = true
		status = lifecycle.CompositeStatus(live[0], live[0])
		seal = lifecycle.CompositeSeal(live[0], live[0])
		reason := "set is incomplete; replace the lost member or retire"
		status.CanCheckout = false
		status.Reason = &reason
	default:
		detail.Retired = true
		a, b := members[0], members[len(members)-1]
		status = lifecycle.CompositeStatus(a, b)
		seal = lifecycle.CompositeSeal(a, b)
	}

	detail.Status = status.Status
	detail.CanCheckout = status.CanCheckout
	detail.Reason = status.Reason
	detail.Seal = seal
	return detail
}

func toGauge(g *entity.Gauge) *gqlmodels.Gauge {
	out := &gqlmodels.Gauge{
		GaugeID:        int32(g.GaugeID),
		ExternalID:     g.ExternalID,
		SerialNumber:   g.SerialNumber,
		SetID:          g.SetID,
		Suffix:         g.Suffix,
		EquipmentClass: g.EquipmentClass,
		CategoryID:     int32(g.CategoryID),
		Spec:           g.SpecFingerprint(),
		Status:         g.Status,
		Sealed:         g.Sealed,
		OwnershipType:  g.OwnershipType,
		OwnerRef:       g.OwnerRef,
		IsSpare:        g.IsSpare,
		Location:       g.LocationCode,
		Retired:        g.DeletedAt != nil,
	}
	if g.CompanionID != nil {
		cid := int32(*g.CompanionID)
		out.CompanionID = &cid
	}
	return out
}

func toHistoryEntry(e *entity.HistoryEntry) *gqlmodels.HistoryEntry {
	out := &gqlmodels.HistoryEntry{
		HistoryID:  int32(e.HistoryID),
		Identifier: e.Identifier,
		Action:     e.Action,
		ActorRef:   e.ActorRef,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if meta, err := historyRepo.DecodeEntry(e); err == nil && meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			out.Metadata = &s
		}
	}
	return out
}
