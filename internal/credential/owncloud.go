package credential

import "github.com/dtroode/filegate-session/internal/model"

var (
	owncloudRequired = []string{"url", "access_token", "user_id"}
	owncloudOptional = []string{"folder", "refresh_token"}
)

// OwncloudRecord is the canonical ownCloud credential record.
type OwncloudRecord struct {
	URL          string
	Folder       string
	AccessToken  string
	RefreshToken string
	UserID       string
}

func (OwncloudRecord) Backend() model.BackendKind { return model.BackendOwncloud }

func (r OwncloudRecord) Fields() map[string]any {
	m := map[string]any{
		"url":          r.URL,
		"access_token": r.AccessToken,
		"user_id":      r.UserID,
	}
	putIfSet(m, "folder", r.Folder)
	putIfSet(m, "refresh_token", r.RefreshToken)
	return m
}

// AssembleOwncloud validates params against the ownCloud schema.
func (v *Validator) AssembleOwncloud(params Params) (OwncloudRecord, error) {
	if err := v.checkParams("owncloud", params, owncloudRequired, owncloudOptional); err != nil {
		return OwncloudRecord{}, err
	}

	return OwncloudRecord{
		URL:          params.str("url"),
		Folder:       params.str("folder"),
		AccessToken:  params.str("access_token"),
		RefreshToken: params.str("refresh_token"),
		UserID:       params.str("user_id"),
	}, nil
}
