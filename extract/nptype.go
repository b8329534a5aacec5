package extract

import (
	"regexp"
	"strings"

	"github.com/nanoform/nanoform/rdr"
)

// keywordTier groups keyword terms sharing one extraction confidence and
// provenance class. Tiers are scanned strongest first within a category.
type keywordTier struct {
	patterns   []*regexp.Regexp
	confidence float64
	provenance string
}

type npCategory struct {
	label string
	tiers []keywordTier
}

func tier(confidence float64, provenance string, terms ...string) keywordTier {
	return keywordTier{
		patterns:   compileTerms(terms),
		confidence: confidence,
		provenance: provenance,
	}
}

// Category scan order matters: a weak lipid signal still outranks a strong
// signal from a later category, mirroring how carrier chemistry dominates
// the affinity rules.
var npCategories = []npCategory{
	{
		label: "lipid-based",
		tiers: []keywordTier{
			tier(0.95, "keywords",
				"liposomal", "liposome", "nanoliposome", "solid lipid nanoparticle", "slp",
				"lipid nanoparticle", "lnp", "cationic lipid", "pegylated liposome", "peg-liposome",
				"stealth liposome", "lipid-based nanocarrier", "lipid-based nanoparticle",
				"lipid core", "ceramide nanoliposome"),
			tier(0.85, "contextual",
				"phospholipid", "cholesterol nanoparticle", "lipid vesicle", "lipid bilayer",
				"lipid emulsion", "nanovesicle", "micellar lipid", "lipid droplet", "lipid matrix"),
			tier(0.7, "indirect",
				"amphiphilic molecule", "lipophilic core", "fatty acid-based",
				"triglyceride nanoparticle", "lipid-like", "surfactant-based",
				"chp", "cholesteryl", "cholesteryl-based"),
		},
	},
	{
		label: "metallic",
		tiers: []keywordTier{
			tier(0.9, "keywords",
				"gold nanoparticle", "au nanoparticle", "silver nanoparticle",
				"iron oxide nanoparticle", "magnetic nanoparticle", "metal nanoparticle",
				"platinum nanoparticle", "palladium nanoparticle", "metallic nanoparticle",
				"titanium dioxide", "platinum acetylacetonate",
				"spio nanoparticle", "spio", "superparamagnetic iron oxide",
				"gadolinium", "gadolinium-chelate"),
			tier(0.85, "contextual",
				"fe3o4", "fe2o3", "cu nanoparticle",
				"metallic core", "core-shell metallic", "superparamagnetic"),
			tier(0.75, "indirect",
				"metal-based", "inorganic core", "conductive nanoparticle", "plasmonic",
				"metal cluster"),
		},
	},
	{
		label: "silica",
		tiers: []keywordTier{
			tier(0.9, "keywords",
				"silica nanoparticle", "silicon dioxide", "sio2", "mesoporous silica",
				"mcm-41", "sba-15", "polysiloxane", "sol-gel", "inorganic matrix"),
			tier(0.85, "contextual",
				"silicate", "silicon-based nanoparticle", "silica-coated", "amorphous silica",
				"silica shell", "polyglucose nanoparticle", "dextran nanoparticle"),
			tier(0.7, "indirect",
				"glass-like", "silicon nanostructure", "oxides of silicon"),
		},
	},
	{
		label: "polymeric",
		tiers: []keywordTier{
			tier(0.9, "keywords",
				"polymeric nanoparticle", "polymer nanoparticle", "micelle", "polymeric micelle",
				"plga", "pla", "pegylated", "peg-lipid", "peg", "pegylated nanoparticle",
				"nanocapsule", "nanocarrier", "nanocontainer", "nanobubble", "nanoemulsion",
				"albumin-bound", "nab-", "albumin-stabilized", "protein nanoparticle",
				"polymer encapsulated", "polymer-based formulation", "branched polymer",
				"polyethyloxazoline", "peox"),
			tier(0.85, "contextual",
				"poly(lactic-co-glycolic acid)", "polyethylene glycol",
				"block copolymer", "polymer matrix", "polymer-based carrier",
				"nanoparticle-based formulation", "nanoparticle-encapsulated",
				"nanopharmaceutical", "nanoparticle-based suspension",
				"nano-sized formulation", "nanoformulation",
				"emulsion", "suspension", "oil-in-water emulsion"),
			tier(0.75, "indirect",
				"biodegradable polymer", "synthetic polymer", "polymer shell", "polymer coating",
				"polypeptide nanoparticle", "pnp", "ferritin-based",
				"phage-based", "bacteriophage", "virus-like particle"),
		},
	},
	{
		label: "carbon-based",
		tiers: []keywordTier{
			tier(0.9, "keywords",
				"carbon nanoparticle", "carbon nanotube", "cnt", "graphene", "graphene oxide",
				"fullerene", "c60", "carbon quantum dot", "carbon dot"),
			tier(0.85, "contextual",
				"nanotube", "carbon shell", "carbon-based nanomaterial", "carbon nanosphere",
				"carbon black", "carbon nanostructure"),
			tier(0.75, "indirect",
				"carbonaceous", "aromatic core", "sp2 hybridized", "carbon scaffold"),
		},
	},
	{
		label: "semiconductor",
		tiers: []keywordTier{
			tier(0.9, "keywords",
				"quantum dot", "qd", "cadmium selenide", "cdse", "zinc sulfide", "zns",
				"semiconductor nanoparticle"),
			tier(0.85, "contextual",
				"core-shell quantum dot", "fluorescent nanoparticle",
				"photoluminescent nanocrystal", "quantum emitter"),
			tier(0.7, "indirect",
				"inorganic nanocrystal", "nanosphere quantum", "quantum nanomaterial"),
		},
	},
}

var npGenericRE = regexp.MustCompile(`(?i)\b(nanoparticle|nanoparticles|nanoparticle-encapsulated|nanopharm|nanopharmaceutical|nab-|albumin-bound|nanocell|c dots|c-dots)\b`)

var spioRE = regexp.MustCompile(`(?i)\b(spio|spions?|superparamagnetic[\s\-]*iron[\s\-]*oxide)\b`)

// maxKeywordConfidence caps the multi-field occurrence boost.
const maxKeywordConfidence = 0.99

// InferNanoparticleType classifies the carrier material from the concept's
// name, synonyms, and definition. A term found in more than one field earns
// a small confidence boost, and the provenance tag is annotated with the
// fields it appeared in (e.g. "keywords:display,definition"). When no
// category matches but the text plainly mentions a nanoparticle, the generic
// label keeps the concept from dropping out of the pipeline entirely.
func InferNanoparticleType(display, synonyms, definition string) rdr.AttributeRecord {
	fields := []struct {
		name string
		text string
	}{
		{"display", strings.ToLower(display)},
		{"synonyms", strings.ToLower(synonyms)},
		{"definition", strings.ToLower(definition)},
	}

	for _, cat := range npCategories {
		for _, t := range cat.tiers {
			for _, pattern := range t.patterns {
				var sources []string
				for _, f := range fields {
					if pattern.MatchString(f.text) {
						sources = append(sources, f.name)
					}
				}
				if len(sources) == 0 {
					continue
				}
				conf := t.confidence + 0.05*float64(len(sources)-1)
				if conf > maxKeywordConfidence {
					conf = maxKeywordConfidence
				}
				return rdr.AttributeRecord{
					Value:      cat.label,
					Confidence: conf,
					Provenance: t.provenance + ":" + strings.Join(sources, ","),
				}
			}
		}
	}

	if npGenericRE.MatchString(combine(display, synonyms, definition)) {
		return rdr.AttributeRecord{
			Value:      "nanoparticle",
			Confidence: 0.6,
			Provenance: "heuristic:contains_nanoparticle",
		}
	}
	return rdr.UnknownAttribute()
}

// InferNanoparticleSubtype detects refinements within a material category.
// Currently only superparamagnetic iron oxide, which the affinity rules
// treat as its own adsorption regime.
func InferNanoparticleSubtype(display, synonyms, definition string) rdr.AttributeRecord {
	if spioRE.MatchString(combine(display, synonyms, definition)) {
		return rdr.AttributeRecord{Value: "spio", Confidence: 0.85, Provenance: "keywords:spio"}
	}
	return rdr.UnknownAttribute()
}
