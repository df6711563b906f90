package model

// Identity is a verified user identity produced by an identity provider.
type Identity struct {
	Email string
	Name  string
}

// Application is an operator-registered client allowed to provision sessions.
type Application struct {
	Name   string `yaml:"name"`
	Secret string `yaml:"secret"`
}
