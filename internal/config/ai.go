package config

type AI string

const (
	AIBedrock AI = "bedrock"
	AIGemini  AI = "gemini"
	AIFixture AI = "fixture"
	AINone    AI = "none"
)

type Model string

const (
	ModelNovaLite  Model = "amazon.nova-lite-v1:0"
	ModelNovaMicro Model = "amazon.nova-micro-v1:0"
	ModelNovaPro   Model = "amazon.nova-pro-v1:0"

	ModelGeminiV25Flash Model = "gemini-2.5-flash"
	ModelGeminiV25Pro   Model = "gemini-2.5-pro"
	ModelGeminiV20Flash Model = "gemini-2.0-flash"

	ModelFixture Model = "fixture"
)

func SupportedAIs() []AI {
	return []AI{
		AIBedrock,
		AIGemini,
		AIFixture,
		AINone,
	}
}

func IsSupportedAI(ai AI) bool {
	for _, s := range SupportedAIs() {
		if s == ai {
			return true
		}
	}
	return false
}

func ModelsForAI(ai AI) []Model {
	switch ai {
	case AIBedrock:
		return []Model{
			ModelNovaLite,
			ModelNovaMicro,
			ModelNovaPro,
		}
	case AIGemini:
		return []Model{
			ModelGeminiV25Flash,
			ModelGeminiV25Pro,
			ModelGeminiV20Flash,
		}
	case AIFixture:
		return []Model{ModelFixture}
	default:
		return []Model{}
	}
}

func DefaultModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}
