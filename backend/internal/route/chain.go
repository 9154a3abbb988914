package route

import (
	"context"
	"strings"

	"github.com/juju/errors"

	"jmssh/backend/internal/store"
	"jmssh/backend/internal/types"
)

// ChainWriter 是替换跳板链时用到的写操作，调用方负责把它放在事务里
type ChainWriter interface {
	ProfilesByLabels(ctx context.Context, labels []string) ([]store.Profile, error)
	DeleteRoutesByOwner(ctx context.Context, ownerID uint) error
	InsertRoute(ctx context.Context, r *store.Route) error
}

// ReplaceChain 用 labels 整体替换 owner 的跳板链，seq 取 labels 中的下标。
// labels 为空时什么也不做；任何 label 不存在时不做任何写入。
func ReplaceChain(ctx context.Context, w ChainWriter, ownerID uint, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	found, err := w.ProfilesByLabels(ctx, labels)
	if err != nil {
		return errors.Trace(err)
	}
	idByLabel := make(map[string]uint, len(found))
	for _, p := range found {
		if p.Label != nil {
			idByLabel[*p.Label] = p.ID
		}
	}

	var missing []string
	for _, label := range labels {
		if _, ok := idByLabel[label]; !ok {
			missing = append(missing, label)
		}
	}
	if len(missing) > 0 {
		return &types.RouteTargetNotFoundError{Ref: strings.Join(missing, ", ")}
	}

	if err := w.DeleteRoutesByOwner(ctx, ownerID); err != nil {
		return errors.Trace(err)
	}
	for seq, label := range labels {
		r := &store.Route{
			ProfileID:    ownerID,
			Seq:          uint(seq),
			ViaProfileID: idByLabel[label],
		}
		if err := w.InsertRoute(ctx, r); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// ChainLabels 返回 owner 的跳板链（label 形式），用于展示
func ChainLabels(ctx context.Context, r Reader, ownerID uint) ([]string, error) {
	routes, err := r.RoutesByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if len(routes) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(routes))
	for _, rt := range routes {
		ids = append(ids, rt.ViaProfileID)
	}
	profiles, err := r.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Trace(err)
	}
	byID := make(map[uint]store.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}
	labels := make([]string, 0, len(routes))
	for _, rt := range routes {
		if p, ok := byID[rt.ViaProfileID]; ok {
			labels = append(labels, p.LabelOrRef())
		} else {
			labels = append(labels, store.ProfileRef(rt.ViaProfileID)+"?")
		}
	}
	return labels, nil
}
