package catalog

// Model categories drive provider-specific request augmentation.
const (
	CategoryCompound = "compound"
	CategoryGPTOSS   = "gpt-oss"
	CategoryLlama    = "llama"
	CategoryExternal = "external"
	CategoryQwen     = "qwen"
)

// providers is the static catalog, loaded once and never mutated.
var providers = []Provider{
	{
		ID:      "groq",
		Name:    "Groq",
		BaseURL: "https://api.groq.com/openai/v1",
		EnvKey:  "GROQ_API_KEY",
		Models: []Model{
			{
				Key:           "compound-beta",
				ID:            "groq/compound",
				Name:          "Groq Compound (Beta)",
				ContextWindow: 131072,
				Description:   "AI system with web search and code execution",
				Category:      CategoryCompound,
			},
			{
				Key:           "compound-mini",
				ID:            "groq/compound-mini",
				Name:          "Groq Compound Mini",
				ContextWindow: 131072,
				Description:   "Lightweight compound system",
				Category:      CategoryCompound,
			},
			{
				Key:           "gpt-oss-120b",
				ID:            "openai/gpt-oss-120b",
				Name:          "GPT-OSS 120B",
				ContextWindow: 131072,
				Description:   "OpenAI's flagship open-weight model with 120B parameters",
				Category:      CategoryGPTOSS,
			},
			{
				Key:           "gpt-oss-20b",
				ID:            "openai/gpt-oss-20b",
				Name:          "GPT-OSS 20B",
				ContextWindow: 131072,
				Description:   "Efficient GPT-OSS model",
				Category:      CategoryGPTOSS,
			},
			{
				Key:           "llama-4-maverick",
				ID:            "meta-llama/llama-4-maverick-17b-128e-instruct",
				Name:          "Llama 4 Maverick 17B",
				ContextWindow: 131072,
				Description:   "Latest Llama 4 with 128 experts MoE",
				Category:      CategoryLlama,
			},
			{
				Key:           "llama-4-scout",
				ID:            "meta-llama/llama-4-scout-17b-16e-instruct",
				Name:          "Llama 4 Scout 17B",
				ContextWindow: 131072,
				Description:   "Llama 4 Scout with 16 experts MoE",
				Category:      CategoryLlama,
			},
			{
				Key:           "llama-3.3-70b",
				ID:            "llama-3.3-70b-versatile",
				Name:          "Llama 3.3 70B Versatile",
				ContextWindow: 131072,
				Description:   "Versatile Llama 3.3 model",
				Category:      CategoryLlama,
			},
			{
				Key:           "llama-3.1-8b",
				ID:            "llama-3.1-8b-instant",
				Name:          "Llama 3.1 8B Instant",
				ContextWindow: 131072,
				Description:   "Fast Llama 3.1 model",
				Category:      CategoryLlama,
			},
			{
				Key:           "kimi-k2",
				ID:            "moonshotai/kimi-k2-instruct-0905",
				Name:          "Kimi K2 (via Groq)",
				ContextWindow: 262144,
				Description:   "Moonshot AI's Kimi K2 with 1T parameters MoE",
				Category:      CategoryExternal,
			},
			{
				Key:           "qwen3-32b",
				ID:            "qwen/qwen3-32b",
				Name:          "Qwen3 32B",
				ContextWindow: 131072,
				Description:   "Alibaba's Qwen3 model",
				Category:      CategoryQwen,
			},
		},
	},
	{
		ID:      "openai",
		Name:    "OpenAI",
		BaseURL: "https://api.openai.com/v1",
		EnvKey:  "OPENAI_API_KEY",
		Models: []Model{
			{
				Key:           "gpt-4.1",
				ID:            "gpt-4.1",
				Name:          "GPT-4.1",
				ContextWindow: 128000,
				Description:   "Latest GPT-4.1 flagship model",
			},
			{
				Key:           "gpt-4.1-mini",
				ID:            "gpt-4.1-mini",
				Name:          "GPT-4.1 Mini",
				ContextWindow: 128000,
				Description:   "Fast and efficient GPT-4.1",
			},
			{
				Key:           "gpt-4o",
				ID:            "gpt-4o",
				Name:          "GPT-4o",
				ContextWindow: 128000,
				Description:   "Multimodal GPT-4 Omni",
			},
			{
				Key:           "gpt-5.1",
				ID:            "gpt-5.1",
				Name:          "GPT-5.1",
				ContextWindow: 256000,
				Description:   "Best model for coding and agentic tasks",
			},
		},
	},
	{
		ID:      "deepseek",
		Name:    "DeepSeek",
		BaseURL: "https://api.deepseek.com",
		EnvKey:  "DEEPSEEK_API_KEY",
		Models: []Model{
			{
				Key:           "deepseek-chat",
				ID:            "deepseek-chat",
				Name:          "DeepSeek V3.2 Chat",
				ContextWindow: 64000,
				Description:   "DeepSeek-V3.2 non-thinking mode",
			},
			{
				Key:           "deepseek-reasoner",
				ID:            "deepseek-reasoner",
				Name:          "DeepSeek V3.2 Reasoner",
				ContextWindow: 64000,
				Description:   "DeepSeek-V3.2 thinking mode with reasoning",
			},
		},
	},
	{
		ID:      "kimi",
		Name:    "Kimi (Moonshot)",
		BaseURL: "https://api.moonshot.cn/v1",
		EnvKey:  "KIMI_API_KEY",
		Models: []Model{
			{
				Key:           "kimi-k2",
				ID:            "kimi-k2-0711",
				Name:          "Kimi K2",
				ContextWindow: 262144,
				Description:   "1T parameter MoE model, 32B activated",
			},
			{
				Key:           "kimi-k2-thinking",
				ID:            "kimi-k2-thinking",
				Name:          "Kimi K2 Thinking",
				ContextWindow: 262144,
				Description:   "K2 with extended reasoning capabilities",
			},
			{
				Key:           "kimi-latest",
				ID:            "kimi-latest",
				Name:          "Kimi Latest",
				ContextWindow: 262144,
				Description:   "Latest Kimi model with image understanding",
			},
		},
	},
}
