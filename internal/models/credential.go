package models

import "time"

// MemberCredential хранит учетные данные участника BSE для советника.
// Пароль и passkey хранятся только в зашифрованном виде (AES-256-GCM),
// расшифровываются непосредственно перед запросом к бирже.
type MemberCredential struct {
	AdvisorID   string     `json:"advisor_id" db:"advisor_id"`
	MemberID    string     `json:"member_id" db:"member_id"`
	UserIDBse   string     `json:"user_id_bse" db:"user_id_bse"`
	PasswordEnc string     `json:"-" db:"password_enc"`
	PassKeyEnc  string     `json:"-" db:"pass_key_enc"`
	ARN         string     `json:"arn" db:"arn"`
	EUIN        string     `json:"euin,omitempty" db:"euin"`
	Active      bool       `json:"active" db:"active"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}

// MemberCredentials - расшифрованные учетные данные, передаются ядру
// протокола и никогда не персистятся в открытом виде
type MemberCredentials struct {
	MemberID string
	UserID   string
	Password string
	PassKey  string
	ARN      string
	EUIN     string // опционально; наличие включает флаг EUINVal="Y"
}
