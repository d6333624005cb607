package composer

import (
	"github.com/roach88/sqlcomposer/internal/contrib"
	"github.com/roach88/sqlcomposer/internal/model"
)

// Injection observes and may modify contributions while a tree is built.
// Typical uses add tenant or security filters to every entity.
//
// Entity hooks only run for entities built for a query; constraint units are
// built several times per entity by the either-or and zero-traversing
// splits and are not reported.
type Injection interface {
	// PreBuildEntity sees the children's contribution before it is merged
	// into the entity template.
	PreBuildEntity(node *model.EntityNode, es contrib.EntityStrategy, child *contrib.Contribution)

	// PostBuildEntity sees the entity's contribution to its parent.
	PostBuildEntity(node *model.EntityNode, es contrib.EntityStrategy, result *contrib.Contribution)

	// PostBuildAttribute sees an attribute's contribution.
	PostBuildAttribute(node *model.AttributeNode, as contrib.AttributeStrategy, result *contrib.Contribution)
}

// InjectionFuncs adapts plain functions to Injection. Nil fields are skipped.
type InjectionFuncs struct {
	PreEntity     func(node *model.EntityNode, es contrib.EntityStrategy, child *contrib.Contribution)
	PostEntity    func(node *model.EntityNode, es contrib.EntityStrategy, result *contrib.Contribution)
	PostAttribute func(node *model.AttributeNode, as contrib.AttributeStrategy, result *contrib.Contribution)
}

func (f InjectionFuncs) PreBuildEntity(node *model.EntityNode, es contrib.EntityStrategy, child *contrib.Contribution) {
	if f.PreEntity != nil {
		f.PreEntity(node, es, child)
	}
}

func (f InjectionFuncs) PostBuildEntity(node *model.EntityNode, es contrib.EntityStrategy, result *contrib.Contribution) {
	if f.PostEntity != nil {
		f.PostEntity(node, es, result)
	}
}

func (f InjectionFuncs) PostBuildAttribute(node *model.AttributeNode, as contrib.AttributeStrategy, result *contrib.Contribution) {
	if f.PostAttribute != nil {
		f.PostAttribute(node, as, result)
	}
}
