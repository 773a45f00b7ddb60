package model

import "github.com/pkg/errors"

// Variant identifies one of the storefront content types eligible for
// translation. The set is closed; anything else is a configuration error.
type Variant string

const (
	VariantProduct       Variant = "Product"
	VariantProductFormat Variant = "ProductFormat"
	VariantCategory      Variant = "Category"
	VariantArticle       Variant = "Article"
	VariantBlogPost      Variant = "BlogPost"
	VariantVideo         Variant = "Video"
	VariantWebinar       Variant = "Webinar"
	VariantQuickReply    Variant = "QuickReply"
	VariantFaq           Variant = "Faq"
)

// Products ship first when the queue is contended.
const (
	PriorityProduct = 2
	PriorityDefault = 3
)

// VariantDescriptor carries everything the pipeline needs to know about a
// content type: where its source rows live and which columns hold
// translatable text. Field order matters only for prompt layout.
type VariantDescriptor struct {
	Variant     Variant
	SourceTable string
	Fields      []string
	Priority    int
}

var variantDescriptors = map[Variant]*VariantDescriptor{
	VariantProduct: {
		Variant:     VariantProduct,
		SourceTable: "Product",
		Fields: []string{
			"name", "subtitle", "shortDescription", "description",
			"fullDetails", "specifications", "metaTitle", "metaDescription",
			"researchSays", "relatedResearch", "participateResearch",
		},
		Priority: PriorityProduct,
	},
	VariantProductFormat: {
		Variant:     VariantProductFormat,
		SourceTable: "ProductFormat",
		Fields:      []string{"name", "description"},
		Priority:    PriorityDefault,
	},
	VariantCategory: {
		Variant:     VariantCategory,
		SourceTable: "Category",
		Fields:      []string{"name", "description", "metaTitle", "metaDescription"},
		Priority:    PriorityDefault,
	},
	VariantArticle: {
		Variant:     VariantArticle,
		SourceTable: "Article",
		Fields:      []string{"title", "excerpt", "content", "metaTitle", "metaDescription"},
		Priority:    PriorityDefault,
	},
	VariantBlogPost: {
		Variant:     VariantBlogPost,
		SourceTable: "BlogPost",
		Fields:      []string{"title", "excerpt", "content", "metaTitle", "metaDescription"},
		Priority:    PriorityDefault,
	},
	VariantVideo: {
		Variant:     VariantVideo,
		SourceTable: "Video",
		Fields:      []string{"title", "description"},
		Priority:    PriorityDefault,
	},
	VariantWebinar: {
		Variant:     VariantWebinar,
		SourceTable: "Webinar",
		Fields:      []string{"title", "description", "agenda"},
		Priority:    PriorityDefault,
	},
	VariantQuickReply: {
		Variant:     VariantQuickReply,
		SourceTable: "QuickReply",
		Fields:      []string{"title", "content"},
		Priority:    PriorityDefault,
	},
	VariantFaq: {
		Variant:     VariantFaq,
		SourceTable: "Faq",
		Fields:      []string{"question", "answer"},
		Priority:    PriorityDefault,
	},
}

// AllVariants returns the closed variant set in a stable order.
func AllVariants() []Variant {
	return []Variant{
		VariantProduct,
		VariantProductFormat,
		VariantCategory,
		VariantArticle,
		VariantBlogPost,
		VariantVideo,
		VariantWebinar,
		VariantQuickReply,
		VariantFaq,
	}
}

// Descriptor resolves a variant to its descriptor.
func Descriptor(v Variant) (*VariantDescriptor, error) {
	d, ok := variantDescriptors[v]
	if !ok {
		return nil, errors.Errorf("%s is not a translatable content type", v)
	}
	return d, nil
}

// ParseVariant validates an operator-supplied variant name, as used by the
// --model flag.
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if _, ok := variantDescriptors[v]; !ok {
		return "", errors.Errorf("%s is not a translatable content type", s)
	}
	return v, nil
}
