package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/timedcache"
	"github.com/unkn0wn-root/timedcache/keys"
)

const defaultPageSize = 10

var ErrInvalidRequest = errors.New("inventory: invalid request")

// Service answers reads from its caches and keeps them consistent with
// writes it performs: after a successful write returns, no read through this
// Service serves data from before the write.
type Service struct {
	up    Upstream
	lists timedcache.TimedCache[Page]
	items timedcache.TimedCache[Resource]
	kinds map[Kind]struct{}
	log   *zap.Logger
}

type Option func(*Service)

func WithKinds(kinds ...Kind) Option {
	return func(s *Service) {
		s.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(up Upstream, lists timedcache.TimedCache[Page], items timedcache.TimedCache[Resource], opts ...Option) *Service {
	s := &Service{up: up, lists: lists, items: items, log: zap.NewNop()}
	WithKinds(DefaultKinds...)(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) check(kind Kind, cloud string) error {
	if _, ok := s.kinds[kind]; !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, kind)
	}
	if cloud == "" {
		return fmt.Errorf("%w: cloud is required", ErrInvalidRequest)
	}
	return nil
}

// normalize fills paging defaults so equivalent queries share a cache entry.
func (q Query) normalize() Query {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	return q
}

func listKey(kind Kind, cloud string, q Query) keys.Key {
	return keys.New(string(kind)).
		Scope(cloud).
		Param("page", q.Page).
		Param("page_size", q.PageSize).
		Param("sort", optional(q.Sort)).
		Param("status", optional(q.Status)).
		Param("search", optional(q.Search))
}

func detailKey(kind Kind, cloud, id string) keys.Key {
	return keys.New(string(kind)).Scope(cloud, "detail", id)
}

// cloudScope covers every listing and detail of kind in cloud.
func cloudScope(kind Kind, cloud string) string {
	return keys.New(string(kind)).Scope(cloud).Prefix()
}

// optional maps "" to nil so unset filters are left out of the key.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Service) List(ctx context.Context, kind Kind, cloud string, q Query) (Page, error) {
	if err := s.check(kind, cloud); err != nil {
		return Page{}, err
	}
	q = q.normalize()
	k := listKey(kind, cloud, q)
	if err := k.Err(); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.lists.GetOrCompute(ctx, k.String(), func(ctx context.Context) (Page, error) {
		return s.up.List(ctx, kind, cloud, q)
	})
}

func (s *Service) Get(ctx context.Context, kind Kind, cloud, id string) (Resource, error) {
	if err := s.check(kind, cloud); err != nil {
		return Resource{}, err
	}
	if id == "" {
		return Resource{}, fmt.Errorf("%w: id is required", ErrInvalidRequest)
	}
	return s.items.GetOrCompute(ctx, detailKey(kind, cloud, id).String(), func(ctx context.Context) (Resource, error) {
		return s.up.Get(ctx, kind, cloud, id)
	})
}

func (s *Service) Delete(ctx context.Context, kind Kind, cloud, id string) error {
	if err := s.check(kind, cloud); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRequest)
	}
	if err := s.up.Delete(ctx, kind, cloud, id); err != nil {
		return err
	}
	s.log.Info("resource deleted", zap.String("kind", string(kind)), zap.String("cloud", cloud), zap.String("id", id))
	return s.invalidate(ctx, kind, cloud)
}

func (s *Service) Act(ctx context.Context, kind Kind, cloud, id, action string) error {
	if err := s.check(kind, cloud); err != nil {
		return err
	}
	if id == "" || action == "" {
		return fmt.Errorf("%w: id and action are required", ErrInvalidRequest)
	}
	if err := s.up.Act(ctx, kind, cloud, id, action); err != nil {
		return err
	}
	s.log.Info("resource action performed",
		zap.String("kind", string(kind)), zap.String("cloud", cloud),
		zap.String("id", id), zap.String("action", action))
	return s.invalidate(ctx, kind, cloud)
}

// BatchResult reports a DeleteMany per id.
type BatchResult struct {
	Succeeded []string
	Failed    map[string]error
}

// DeleteMany deletes ids one by one. An empty id rejects the whole batch
// before anything is deleted. Upstream failures do not stop the batch; the
// listings are invalidated once if any delete succeeded.
func (s *Service) DeleteMany(ctx context.Context, kind Kind, cloud string, ids []string) (BatchResult, error) {
	res := BatchResult{Failed: make(map[string]error)}
	if err := s.check(kind, cloud); err != nil {
		return res, err
	}
	for i, id := range ids {
		if id == "" {
			return res, fmt.Errorf("%w: id %d is empty", ErrInvalidRequest, i)
		}
	}
	for _, id := range ids {
		if err := s.up.Delete(ctx, kind, cloud, id); err != nil {
			res.Failed[id] = err
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	if len(res.Succeeded) == 0 {
		return res, nil
	}
	s.log.Info("batch delete finished",
		zap.String("kind", string(kind)), zap.String("cloud", cloud),
		zap.Int("succeeded", len(res.Succeeded)), zap.Int("failed", len(res.Failed)))
	return res, s.invalidate(ctx, kind, cloud)
}

// Refresh drops everything cached for cloud, across all kinds.
func (s *Service) Refresh(ctx context.Context, cloud string) error {
	if cloud == "" {
		return fmt.Errorf("%w: cloud is required", ErrInvalidRequest)
	}
	var errs []error
	for kind := range s.kinds {
		errs = append(errs, s.invalidate(ctx, kind, cloud))
	}
	return errors.Join(errs...)
}

// RefreshAll drops everything cached by the Service.
func (s *Service) RefreshAll(ctx context.Context) error {
	return errors.Join(s.lists.Clear(ctx), s.items.Clear(ctx))
}

func (s *Service) invalidate(ctx context.Context, kind Kind, cloud string) error {
	scope := cloudScope(kind, cloud)
	err := errors.Join(
		s.lists.InvalidatePrefix(ctx, scope),
		s.items.InvalidatePrefix(ctx, scope),
	)
	if err != nil {
		s.log.Error("cache invalidation failed after write", zap.String("scope", scope), zap.Error(err))
		return fmt.Errorf("inventory: invalidate %s: %w", scope, err)
	}
	return nil
}
