package domain

import (
	"strings"

	m "github.com/HanFengRuYue/UnityLocalizationToolkit/internal/model"
	"github.com/HanFengRuYue/UnityLocalizationToolkit/internal/unity"
)

// DetectionRule names which signal classified a resource, for diagnostics
// and tests. Rules are evaluated in fixed order; each returns a definite
// verdict or falls through to the next.
type DetectionRule string

const (
	RuleBuiltinFont    DetectionRule = "builtin-font"
	RuleScriptRef      DetectionRule = "script-reference"
	RuleFieldThreshold DetectionRule = "field-threshold"
	RuleNameFragment   DetectionRule = "name-fragment"
	RuleNone           DetectionRule = "none"
)

// ResourceVerdict is the tagged result of resource classification.
type ResourceVerdict struct {
	IsResource bool
	Kind       m.CompositeKind
	Rule       DetectionRule

	// RelatedIDs lists linked object ids for composite resources, in
	// resolution order (material first, then first atlas texture).
	RelatedIDs []int64
}

// compositeScriptNames are the descriptor class names that identify a
// composite font resource via its script reference.
var compositeScriptNames = map[string]struct{}{
	"TMP_FontAsset":   {},
	"TextMeshProFont": {},
	"TMPro_FontAsset": {},
}

// compositeFieldNames is the reference set of characteristic field names
// for the composite font kind. On stripped-metadata builds only a
// handful survive, so the detection threshold is deliberately low.
var compositeFieldNames = []string{
	"m_FaceInfo",
	"m_GlyphTable",
	"m_CharacterTable",
	"m_AtlasTextures",
	"m_AtlasWidth",
	"m_AtlasHeight",
	"m_AtlasPadding",
	"m_AtlasRenderMode",
	"m_Material",
	"m_SourceFontFile",
	"m_SourceFontFileGUID",
	"m_FontWeightTable",
	"m_GlyphRenderMode",
	"m_UsedGlyphRects",
	"m_FreeGlyphRects",
}

// compositeFieldThreshold is how many characteristic fields must be
// present and non-dummy to classify as composite. Two, not a majority:
// stripped builds retain only the structurally-required fields.
const compositeFieldThreshold = 2

// compositeNameFragments is the last-resort signal: any present field
// whose name contains one of these (case-insensitive) marks a composite.
// Threshold counting can under-fire when very few fields survive
// stripping.
var compositeNameFragments = []string{
	"glyphtable",
	"faceinfo",
	"atlastexture",
}

// Detector classifies which serialized objects are font-like resources.
type Detector struct {
	session *Session
}

// NewDetector constructs a detector over the given session.
func NewDetector(session *Session) *Detector {
	return &Detector{session: session}
}

// ClassifyObject runs the prioritized rule list against one object.
// Objects of the built-in font kind are always simple resources; only
// anchor-kind objects (MonoBehaviour) can classify as NotAResource.
func (d *Detector) ClassifyObject(f *unity.SerializedFile, obj *unity.Object) ResourceVerdict {
	if obj.Kind == unity.KindFont {
		return ResourceVerdict{IsResource: true, Kind: m.KindSimple, Rule: RuleBuiltinFont}
	}
	if obj.Kind != unity.KindMonoBehaviour {
		return ResourceVerdict{Rule: RuleNone}
	}

	tree, err := unity.DecodeObject(obj)
	if err != nil {
		return ResourceVerdict{Rule: RuleNone}
	}

	// Primary signal: a resolvable script reference naming a known
	// descriptor class.
	if verdict, ok := d.classifyByScriptRef(f, tree); ok {
		return verdict
	}

	// Threshold signal: count characteristic fields that survived
	// stripping.
	present := 0
	for _, name := range compositeFieldNames {
		if field, ok := tree.Child(name); ok && field.Present() {
			present++
		}
	}
	if present >= compositeFieldThreshold {
		return ResourceVerdict{
			IsResource: true,
			Kind:       m.KindComposite,
			Rule:       RuleFieldThreshold,
			RelatedIDs: relatedObjectIDs(tree),
		}
	}

	// Substring signal: a single telltale fragment in any present field
	// name.
	for _, field := range tree.Children {
		if !field.Present() {
			continue
		}
		lower := strings.ToLower(field.Name)
		for _, fragment := range compositeNameFragments {
			if strings.Contains(lower, fragment) {
				return ResourceVerdict{
					IsResource: true,
					Kind:       m.KindComposite,
					Rule:       RuleNameFragment,
					RelatedIDs: relatedObjectIDs(tree),
				}
			}
		}
	}

	return ResourceVerdict{Rule: RuleNone}
}

func (d *Detector) classifyByScriptRef(f *unity.SerializedFile, tree *unity.Field) (ResourceVerdict, bool) {
	script, ok := tree.Child("m_Script")
	if !ok || !script.Present() || script.Kind != unity.KindPPtr {
		return ResourceVerdict{}, false
	}
	className, ok := d.session.ResolveScriptClass(f, script.FileID, script.PathID)
	if !ok {
		return ResourceVerdict{}, false
	}
	if _, known := compositeScriptNames[className]; !known {
		return ResourceVerdict{}, false
	}
	return ResourceVerdict{
		IsResource: true,
		Kind:       m.KindComposite,
		Rule:       RuleScriptRef,
		RelatedIDs: relatedObjectIDs(tree),
	}, true
}

// relatedObjectIDs resolves the linked objects a full composite
// replacement must rewrite together: the direct material reference and
// the first entry of the atlas texture array. A zero reference means
// "not present", never object zero.
func relatedObjectIDs(tree *unity.Field) []int64 {
	var related []int64

	if mat, ok := tree.Child("m_Material"); ok && mat.Present() && mat.Kind == unity.KindPPtr {
		if mat.PathID != 0 {
			related = append(related, mat.PathID)
		}
	}

	if atlases, ok := tree.Child("m_AtlasTextures"); ok && atlases.Present() && len(atlases.Children) > 0 {
		first := atlases.Children[0]
		if first.Present() && first.Kind == unity.KindPPtr && first.PathID != 0 {
			related = append(related, first.PathID)
		}
	}

	return related
}

// LocateResources scans one container for font-like resources.
func (d *Detector) LocateResources(path m.Path) ([]m.ResourceRecord, error) {
	f, err := d.session.Container(string(path))
	if err != nil {
		return nil, err
	}

	var resources []m.ResourceRecord
	for _, obj := range f.Objects() {
		verdict := d.ClassifyObject(f, obj)
		if !verdict.IsResource {
			continue
		}
		resources = append(resources, m.ResourceRecord{
			Name:             objectName(obj),
			ContainerFile:    path,
			PrimaryObjectID:  obj.PathID,
			Kind:             verdict.Kind,
			RelatedObjectIDs: verdict.RelatedIDs,
			Status:           m.StatusPending,
		})
	}
	return resources, nil
}

func objectName(obj *unity.Object) string {
	tree, err := unity.DecodeObject(obj)
	if err != nil {
		return ""
	}
	if name, ok := tree.Child("m_Name"); ok {
		if s, ok := name.StringValue(); ok {
			return s
		}
	}
	return ""
}
