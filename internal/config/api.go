package config

// APIConfig controls how the client reaches the pick'em backend.
type APIConfig struct {
	BaseURL       string
	Timeout       Duration
	RetryAttempts int
	RetryBackoff  Duration
}

// AuthConfig carries identity provider settings handed to login front ends.
type AuthConfig struct {
	GoogleClientID string
}

func loadAPI(file fileAPI) APIConfig {
	return APIConfig{
		BaseURL:       envOrDefault(envAPIBaseURL, stringOr(file.BaseURL, defaultAPIBaseURL)),
		Timeout:       durationEnvOrDefault(envAPITimeout, durationOr(file.Timeout, defaultAPITimeout)),
		RetryAttempts: intEnvOrDefault(envAPIRetryAttempts, intOr(file.RetryAttempts, defaultAPIRetryAttempts)),
		RetryBackoff:  durationEnvOrDefault(envAPIRetryBackoff, durationOr(file.RetryBackoff, defaultAPIRetryBackoff)),
	}
}

func loadAuth(file fileAuth) AuthConfig {
	return AuthConfig{
		GoogleClientID: envOrDefault(envGoogleClientID, file.GoogleClientID),
	}
}
