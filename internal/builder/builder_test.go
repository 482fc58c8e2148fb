package builder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/panelforge/panelforge/internal/model"
	"github.com/panelforge/panelforge/internal/registry"
)

func articleDefinition() *model.Resource {
	email := &model.Field{Key: "contact", Kind: "email", Rules: "required"}
	title := &model.Field{Key: "title", Kind: "text", Rules: "required|min:2"}

	caption := &model.Field{Key: "caption", Kind: "text", Rules: "required"}
	photo := &model.Field{Key: "photo", Kind: "image"}

	return &model.Resource{
		Name:   "article",
		Fields: []*model.Field{title, email},
		Fieldsets: []*model.Fieldset{{
			Key:       "gallery",
			MinItems:  1,
			MaxItems:  6,
			Sortable:  true,
			HeadTitle: "caption",
			Schema: []model.SchemaEntry{
				{Field: caption},
				{Field: photo},
			},
		}},
	}
}

func TestBuild_ResolvesKindsAndMergesRules(t *testing.T) {
	t.Parallel()

	built, err := Build(context.Background(), []*model.Resource{articleDefinition()},
		registry.NewWithCoreKinds(), nil)
	require.NoError(t, err)
	require.Len(t, built, 1)

	res := built[0]
	require.Len(t, res.Fields, 2)
	assert.Equal(t, "required|min:2", res.Fields[0].Rules)
	assert.Equal(t, "email|required", res.Fields[1].Rules,
		"the kind's implicit rule is prepended to the field's own rules")

	require.Len(t, res.Groups, 1)
	gallery := res.Groups[0]
	assert.Equal(t, "gallery", gallery.Key())
	assert.Equal(t, 1, gallery.MinItems())
	assert.Equal(t, 6, gallery.MaxItems())
	assert.True(t, gallery.Sortable())
	assert.Equal(t, "caption", gallery.HeadTitle())
}

func TestBuild_ResourceRulesCombineFieldsAndGroups(t *testing.T) {
	t.Parallel()

	built, err := Build(context.Background(), []*model.Resource{articleDefinition()},
		registry.NewWithCoreKinds(), nil)
	require.NoError(t, err)

	rules := built[0].Rules()
	assert.Equal(t, "required|min:2", rules["title"])
	assert.Equal(t, "email|required", rules["contact"])
	assert.Equal(t, "required|array|min:1|max:6", rules["gallery"])
	assert.Equal(t, "required", rules["gallery.*.caption"])
	assert.NotContains(t, rules, "gallery.*.photo",
		"attachment fields carry no value rules")
}

func TestBuild_UnknownKind(t *testing.T) {
	t.Parallel()

	def := &model.Resource{
		Name:   "article",
		Fields: []*model.Field{{Key: "title", Kind: "hologram"}},
	}

	_, err := Build(context.Background(), []*model.Resource{def}, registry.NewWithCoreKinds(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "hologram"`)
	assert.Contains(t, err.Error(), "text", "the error lists the registered kinds")
}

func TestBuild_HeadBindingMustExist(t *testing.T) {
	t.Parallel()

	def := &model.Resource{
		Name: "article",
		Fieldsets: []*model.Fieldset{{
			Key:       "gallery",
			HeadTitle: "no_such_field",
			Schema:    []model.SchemaEntry{{Field: &model.Field{Key: "caption", Kind: "text"}}},
		}},
	}

	_, err := Build(context.Background(), []*model.Resource{def}, registry.NewWithCoreKinds(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "head_title")
	assert.Contains(t, err.Error(), "no_such_field")
}

func TestBuild_DefaultsConvertToGoValues(t *testing.T) {
	t.Parallel()

	defaultVal := cty.NumberIntVal(5)
	def := &model.Resource{
		Name: "article",
		Fields: []*model.Field{
			{Key: "score", Kind: "number", Type: cty.Number, Default: &defaultVal},
		},
	}

	built, err := Build(context.Background(), []*model.Resource{def}, registry.NewWithCoreKinds(), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(5), built[0].Fields[0].Default)
}

func TestBuild_GridSchemaIsPreserved(t *testing.T) {
	t.Parallel()

	def := &model.Resource{
		Name: "page",
		Fieldsets: []*model.Fieldset{{
			Key: "rows",
			Schema: []model.SchemaEntry{{
				Grid: &model.Grid{Columns: []model.Column{
					{Span: 8, Fields: []*model.Field{{Key: "heading", Kind: "text"}}},
					{Span: 4, Fields: []*model.Field{{Key: "side", Kind: "text"}}},
				}},
			}},
		}},
	}

	built, err := Build(context.Background(), []*model.Resource{def}, registry.NewWithCoreKinds(), nil)
	require.NoError(t, err)

	rows, ok := built[0].Group("rows")
	require.True(t, ok)
	schema := rows.Schema()
	require.Len(t, schema, 1)
	require.NotNil(t, schema[0].Grid)
	require.Len(t, schema[0].Grid.Columns, 2)
	assert.Equal(t, 8, schema[0].Grid.Columns[0].Span)
}

func TestMergeRules_DropsDuplicateKindRule(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "email|required", mergeRules("email", "required"))
	assert.Equal(t, "required|email", mergeRules("email", "required|email"))
	assert.Equal(t, "numeric", mergeRules("numeric", ""))
	assert.Equal(t, "required", mergeRules("", "required"))
}
