package route

import (
	"context"

	"github.com/juju/errors"

	"jmssh/backend/internal/store"
	"jmssh/backend/internal/types"
)

// Reader 是解析连接计划所需的只读查询
type Reader interface {
	ProfileByID(ctx context.Context, id uint) (*store.Profile, error)
	ProfileByLabel(ctx context.Context, label string) (*store.Profile, error)
	ProfilesByIDs(ctx context.Context, ids []uint) ([]store.Profile, error)
	RoutesByOwner(ctx context.Context, ownerID uint) ([]store.Route, error)
	KeyPathsByProfileIDs(ctx context.Context, ids []uint) (map[uint]string, error)
}

// Resolve 把 connect 目标解析为有序的 hop 列表：先是跳板（按 seq），最后是目标本身。
// 只读取目标自己的跳板链，不会展开跳板自身的链。
func Resolve(ctx context.Context, r Reader, in types.ConnectInput) (types.ConnectPlan, error) {
	base, err := findBase(ctx, r, in)
	if err != nil {
		return types.ConnectPlan{}, err
	}

	routes, err := r.RoutesByOwner(ctx, base.ID)
	if err != nil {
		return types.ConnectPlan{}, errors.Trace(err)
	}

	ids := make([]uint, 0, len(routes)+1)
	for _, rt := range routes {
		ids = append(ids, rt.ViaProfileID)
	}
	ids = append(ids, base.ID)

	profiles, err := r.ProfilesByIDs(ctx, ids)
	if err != nil {
		return types.ConnectPlan{}, errors.Trace(err)
	}
	keys, err := r.KeyPathsByProfileIDs(ctx, ids)
	if err != nil {
		return types.ConnectPlan{}, errors.Trace(err)
	}

	return BuildPlan(*base, routes, profiles, keys)
}

func findBase(ctx context.Context, r Reader, in types.ConnectInput) (*store.Profile, error) {
	if in.ID != nil {
		return r.ProfileByID(ctx, *in.ID)
	}
	if in.Target == "" {
		return nil, &types.ProfileNotFoundError{Ref: `""`}
	}
	return r.ProfileByLabel(ctx, in.Target)
}

// BuildPlan 用已经加载好的数据组装连接计划。
// routes 必须已按 seq 升序；profiles 中缺少任何 via 都会返回 RouteTargetNotFoundError。
func BuildPlan(base store.Profile, routes []store.Route, profiles []store.Profile, keys map[uint]string) (types.ConnectPlan, error) {
	byID := make(map[uint]store.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	hops := make([]types.ConnectHop, 0, len(routes)+1)
	for _, rt := range routes {
		via, ok := byID[rt.ViaProfileID]
		if !ok {
			return types.ConnectPlan{}, &types.RouteTargetNotFoundError{Ref: store.ProfileRef(rt.ViaProfileID)}
		}
		hops = append(hops, toHop(via, keys))
	}
	hops = append(hops, toHop(base, keys))

	return types.ConnectPlan{Hops: hops}, nil
}

func toHop(p store.Profile, keys map[uint]string) types.ConnectHop {
	hop := types.ConnectHop{
		ID:       p.ID,
		Label:    p.LabelOrRef(),
		Host:     p.Hostname,
		User:     p.Username,
		Port:     p.PortOrDefault(),
		AuthMode: p.AuthMode,
	}
	if path, ok := keys[p.ID]; ok {
		hop.KeyPath = path
	}
	return hop
}
