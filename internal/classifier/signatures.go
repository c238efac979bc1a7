package classifier

// Form type names. PLS-5 is the flagship form and the only one with a
// dedicated score enrichment.
const (
	FormPLS5  = "PLS-5"
	FormCELF5 = "CELF-5"
	FormGFTA3 = "GFTA-3"
	FormPPVT5 = "PPVT-5"
	FormEVT3  = "EVT-3"
	FormCASL2 = "CASL-2"
)

// Signature pairs a document type with the literal phrases expected on a
// correctly-recognised copy of that form. Phrases are lower case.
type Signature struct {
	DocumentType string   `json:"documentType"`
	Phrases      []string `json:"phrases"`
}

// DefaultSignatures is the built-in table. Order matters only for breaking
// exact ties.
var DefaultSignatures = []Signature{
	{
		DocumentType: FormPLS5,
		Phrases: []string{
			"preschool language scales",
			"auditory comprehension",
			"expressive communication",
			"total language",
			"pls-5",
			"growth scale value",
		},
	},
	{
		DocumentType: FormCELF5,
		Phrases: []string{
			"clinical evaluation of language fundamentals",
			"celf-5",
			"core language score",
			"receptive language index",
			"expressive language index",
			"sentence comprehension",
		},
	},
	{
		DocumentType: FormGFTA3,
		Phrases: []string{
			"goldman-fristoe",
			"test of articulation",
			"sounds-in-words",
			"sounds-in-sentences",
			"gfta-3",
			"stimulability",
		},
	},
	{
		DocumentType: FormPPVT5,
		Phrases: []string{
			"peabody picture vocabulary test",
			"ppvt-5",
			"receptive vocabulary",
			"training items",
			"ceiling set",
			"basal set",
		},
	},
	{
		DocumentType: FormEVT3,
		Phrases: []string{
			"expressive vocabulary test",
			"evt-3",
			"labeling items",
			"synonym items",
			"example items",
			"start item by age",
		},
	},
	{
		DocumentType: FormCASL2,
		Phrases: []string{
			"comprehensive assessment of spoken language",
			"casl-2",
			"general language ability index",
			"syntax construction",
			"pragmatic language",
			"antonyms",
		},
	},
}

// KnownFormTypes returns the document types in the default table.
func KnownFormTypes() []string {
	out := make([]string, 0, len(DefaultSignatures))
	for _, s := range DefaultSignatures {
		out = append(out, s.DocumentType)
	}
	return out
}
