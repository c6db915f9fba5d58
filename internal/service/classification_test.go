package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

type fakeClassifierRepo struct {
	classifiers map[string]domain.Classifier
	err         error
	calls       int
}

func (f *fakeClassifierRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Classifier, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var found []domain.Classifier
	for _, id := range ids {
		if classifier, ok := f.classifiers[id]; ok {
			found = append(found, classifier)
		}
	}
	return found, nil
}

func taxonomyFixture() *fakeClassifierRepo {
	nodes := []domain.Classifier{
		{ID: "services", Name: "Services", RootID: "services", Path: []string{"services"}, Level: 0},
		{ID: "billing", Name: "Billing", RootID: "services", Path: []string{"services", "billing"}, Level: 1},
		{ID: "network", Name: "Network", RootID: "services", Path: []string{"services", "network"}, Level: 1},
		{ID: "products", Name: "Products", RootID: "products", Path: []string{"products"}, Level: 0},
		{ID: "hardware", Name: "Hardware", RootID: "products", Path: []string{"products", "hardware"}, Level: 1, IsLeaf: true},
	}
	byID := make(map[string]domain.Classifier, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}
	return &fakeClassifierRepo{classifiers: byID}
}

func TestResolveEmptySelection(t *testing.T) {
	repo := taxonomyFixture()
	resolver := NewClassifierResolver(repo)

	selection, err := resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, selection.Empty())
	assert.Equal(t, 0, repo.calls, "empty selection should not hit the taxonomy")
}

func TestResolveSingleHierarchy(t *testing.T) {
	resolver := NewClassifierResolver(taxonomyFixture())

	selection, err := resolver.Resolve(context.Background(), []string{"billing", "network"})
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "network"}, selection.NodeIDs)
	assert.Equal(t, "services", selection.RootID)
}

func TestResolveDeduplicates(t *testing.T) {
	resolver := NewClassifierResolver(taxonomyFixture())

	selection, err := resolver.Resolve(context.Background(), []string{"billing", "billing", "network", "billing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "network"}, selection.NodeIDs)
}

func TestResolveUnknownClassifier(t *testing.T) {
	resolver := NewClassifierResolver(taxonomyFixture())

	_, err := resolver.Resolve(context.Background(), []string{"billing", "nonsense"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_CLASSIFIER", apperrors.CodeOf(err))
	assert.Equal(t, "nonsense", apperrors.ToDomainError(err).Details["classifier_id"])
}

func TestResolveAmbiguousHierarchy(t *testing.T) {
	resolver := NewClassifierResolver(taxonomyFixture())

	_, err := resolver.Resolve(context.Background(), []string{"billing", "hardware"})
	require.Error(t, err)
	assert.Equal(t, "AMBIGUOUS_HIERARCHY", apperrors.CodeOf(err))
	assert.ElementsMatch(t, []string{"services", "products"}, apperrors.ToDomainError(err).Details["root_ids"])
}

func TestResolveRootAndDescendantShareHierarchy(t *testing.T) {
	resolver := NewClassifierResolver(taxonomyFixture())

	selection, err := resolver.Resolve(context.Background(), []string{"services", "billing"})
	require.NoError(t, err)
	assert.Equal(t, "services", selection.RootID)
}

func TestResolvePropagatesStoreError(t *testing.T) {
	repo := taxonomyFixture()
	repo.err = errors.New("connection reset")
	resolver := NewClassifierResolver(repo)

	_, err := resolver.Resolve(context.Background(), []string{"billing"})
	assert.Error(t, err)
}
