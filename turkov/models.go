package turkov

type signInRequest struct {
	UserEmail string `json:"userEmail"`
	Password  string `json:"password"`
}

type signInResponse struct {
	AccessToken           string `json:"accessToken"`
	AccessTokenExpiresAt  int64  `json:"accessTokenExpiresAt"`
	RefreshToken          string `json:"refreshToken"`
	RefreshTokenExpiresAt int64  `json:"refreshTokenExpiresAt"`
}

type deviceRecord struct {
	ID              string `json:"_id"`
	SerialNumber    string `json:"serialNumber"`
	Pin             string `json:"pin"`
	DeviceType      string `json:"deviceType"`
	DeviceName      string `json:"deviceName"`
	FirmwareVersion string `json:"firmVer"`
	Image           string `json:"image"`
}

type userResponse struct {
	Devices    []deviceRecord `json:"devices"`
	UserEmail  string         `json:"userEmail"`
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	MiddleName string         `json:"fathersName"`
}

type messageResponse struct {
	Message string `json:"message"`
}
