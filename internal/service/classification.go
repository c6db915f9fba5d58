package service

import (
	"context"

	"github.com/spec-kit/ticket-analytics/internal/domain"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	apperrors "github.com/spec-kit/ticket-analytics/pkg/util/errorutil"
)

// Selection is a resolved classifier filter: a ticket matches when its
// classification path contains any of the node ids, i.e. it is classified
// at or below one of the selected nodes. The zero Selection is the
// universal predicate.
type Selection struct {
	NodeIDs []string
	RootID  string
}

// Empty reports whether the selection filters nothing.
func (s Selection) Empty() bool {
	return len(s.NodeIDs) == 0
}

// ClassifierResolver turns classifier identifiers into a membership
// predicate over ticket classifications.
type ClassifierResolver interface {
	Resolve(ctx context.Context, ids []string) (Selection, error)
}

type classifierResolver struct {
	classifiers repository.ClassifierRepository
}

// NewClassifierResolver constructs the resolver over the taxonomy view.
func NewClassifierResolver(classifiers repository.ClassifierRepository) ClassifierResolver {
	return &classifierResolver{classifiers: classifiers}
}

// Resolve validates every identifier against the taxonomy and enforces the
// single-root invariant: the selected nodes are OR-ed together downstream,
// which is only meaningful inside one hierarchy.
func (r *classifierResolver) Resolve(ctx context.Context, ids []string) (Selection, error) {
	if len(ids) == 0 {
		return Selection{}, nil
	}

	unique := dedupe(ids)
	classifiers, err := r.classifiers.FindByIDs(ctx, unique)
	if err != nil {
		return Selection{}, err
	}

	byID := make(map[string]domain.Classifier, len(classifiers))
	for _, classifier := range classifiers {
		byID[classifier.ID] = classifier
	}

	var roots []string
	seenRoots := make(map[string]bool)
	for _, id := range unique {
		classifier, ok := byID[id]
		if !ok {
			return Selection{}, apperrors.NewInvalidClassifier(id)
		}
		if !seenRoots[classifier.RootID] {
			seenRoots[classifier.RootID] = true
			roots = append(roots, classifier.RootID)
		}
	}
	if len(roots) > 1 {
		return Selection{}, apperrors.NewAmbiguousHierarchy(roots)
	}

	return Selection{NodeIDs: unique, RootID: roots[0]}, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
