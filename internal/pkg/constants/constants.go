package constants

// Viper keys.
const (
	ViperServerAddr         = "server.addr"
	ViperServerAllowOrigins = "server.allow_origins"

	ViperDataOriginal     = "data.original"
	ViperDataCleansed     = "data.cleansed"
	ViperDataFetchRetries = "data.fetch_retries"
	ViperDataFetchDelay   = "data.fetch_delay"

	ViperPipelineDatePolicy  = "pipeline.date_policy"
	ViperPipelineDateLayouts = "pipeline.date_layouts"
	ViperPipelineBaseYear    = "pipeline.base_year"
	ViperPipelineTopN        = "pipeline.top_n"

	ViperDisplayRegions   = "display.regions"
	ViperDisplayVariables = "display.variables"

	ViperForecastAlpha   = "forecast.alpha"
	ViperForecastBeta    = "forecast.beta"
	ViperForecastHorizon = "forecast.horizon"

	ViperInsightTimeout = "insight.timeout"
	ViperSecretKey      = "insight.secret"
	ViperGeminiAPIKey   = "insight.gemini.api_key"
	ViperGeminiModel    = "insight.gemini.model"
	ViperGeminiEndpoint = "insight.gemini.endpoint"

	ViperLogLevel = "log.level"
)

// Context keys.
const (
	CtxKeyRequestID = "request_id"
	CtxKeySubject   = "subject"
)

const HeaderRequestID = "X-Request-ID"

const CookieKeySecretToken = "secret_token"
