package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"campus-directory/internal/auth"
	"campus-directory/internal/config"
	"campus-directory/internal/logger"
	model "campus-directory/internal/models"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrNameRequired       = errors.New("name is required")
	ErrLDAPDisabled       = errors.New("campus directory login is not configured")
	ErrUserNotFound       = errors.New("user not found")
	ErrRefreshRevoked     = errors.New("refresh token not found or revoked")
)

const (
	minPasswordLength = 8
	maxActiveSessions = 2
)

type AuthService struct {
	db   *bun.DB
	jwt  *auth.JWTManager
	cfg  *config.Config
	logr *logger.Logger
}

func NewAuthService(db *bun.DB, jwt *auth.JWTManager, cfg *config.Config, logr *logger.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, cfg: cfg, logr: logr}
}

// HashPassword uses bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Provider string   `json:"provider"`
	Roles    []string `json:"roles"`
}

func userInfoFrom(u *model.User) *UserInfo {
	return &UserInfo{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Provider: u.Provider,
		Roles:    u.Roles,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate normalizes the email and checks the request.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)

	if _, err := mail.ParseAddress(r.Email); err != nil || r.Email == "" {
		return ErrInvalidEmail
	}
	if len(r.Password) < minPasswordLength {
		return ErrWeakPassword
	}
	if r.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Register creates a local account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.db.NewSelect().Model((*model.User)(nil)).Where("email = ?", req.Email).Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Provider:     "local",
		Name:         req.Name,
		Roles:        []string{"student"},
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(&u).Exec(ctx); err != nil {
		return nil, err
	}

	s.logr.Info("local user registered", zap.String("user_id", u.ID.String()))
	return userInfoFrom(&u), nil
}

// LoginLocal checks an email/password pair and issues a token pair.
func (s *AuthService) LoginLocal(ctx context.Context, email, password, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u model.User
	err := s.db.NewSelect().Model(&u).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" {
		return nil, nil, fmt.Errorf("account not configured for local login")
	}
	if err := ComparePassword(u.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	s.touchLastLogin(ctx, u.ID)

	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, "local", u.Roles)
	if err != nil {
		return nil, nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.RefreshJTI, deviceInfo); err != nil {
		return nil, nil, err
	}

	info := userInfoFrom(&u)
	info.Provider = "local"
	return pair, info, nil
}

// StripDomain removes a trailing "@domain" (case-insensitive) from username.
func StripDomain(username, domain string) string {
	username = strings.TrimSpace(username)
	if domain == "" {
		return username
	}
	suffix := "@" + strings.ToLower(domain)
	if strings.HasSuffix(strings.ToLower(username), suffix) {
		return username[:len(username)-len(suffix)]
	}
	return username
}

// LoginLDAP authenticates against the campus directory (bind as the user,
// then search for attributes), provisions the user on first login and issues
// a token pair.
func (s *AuthService) LoginLDAP(ctx context.Context, ldapUser, ldapPass, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	if s.cfg.LDAPServer == "" {
		return nil, nil, ErrLDAPDisabled
	}
	if strings.TrimSpace(ldapPass) == "" {
		return nil, nil, ErrInvalidCredentials
	}

	cleanUsername := StripDomain(ldapUser, s.cfg.LDAPDomain)

	ldap.DefaultTimeout = 10 * time.Second
	l, err := ldap.DialURL(s.cfg.LDAPServer)
	if err != nil {
		s.logr.Error("LDAP dial failed", zap.Error(err), zap.String("server", s.cfg.LDAPServer))
		return nil, nil, fmt.Errorf("ldap connection failed")
	}
	defer func() {
		if l != nil {
			if closeErr := l.Close(); closeErr != nil {
				s.logr.Debug("LDAP close error", zap.Error(closeErr))
			}
		}
	}()
	l.SetTimeout(30 * time.Second)

	userDN := cleanUsername
	if s.cfg.LDAPDomain != "" {
		userDN = fmt.Sprintf("%s@%s", cleanUsername, strings.ToUpper(s.cfg.LDAPDomain))
	}

	if err = l.Bind(userDN, ldapPass); err != nil {
		s.logr.Warn("LDAP bind failed", zap.String("username", cleanUsername))
		return nil, nil, ErrInvalidCredentials
	}

	searchReq := ldap.NewSearchRequest(
		s.cfg.LDAPBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		fmt.Sprintf("(|(sAMAccountName=%[1]s)(uid=%[1]s))", ldap.EscapeFilter(cleanUsername)),
		[]string{"cn", "givenName", "sn", "mail", "displayName"},
		nil,
	)

	sr, err := l.Search(searchReq)
	if err != nil {
		s.logr.Error("LDAP search failed", zap.Error(err), zap.String("username", cleanUsername))
		return nil, nil, fmt.Errorf("user lookup failed")
	}
	if len(sr.Entries) == 0 {
		s.logr.Warn("LDAP: no entry found", zap.String("username", cleanUsername))
		return nil, nil, fmt.Errorf("user not found in directory")
	}

	entry := sr.Entries[0]
	mailAddr := strings.ToLower(entry.GetAttributeValue("mail"))
	if mailAddr == "" {
		s.logr.Error("LDAP user missing email", zap.String("username", cleanUsername))
		return nil, nil, fmt.Errorf("user account missing email")
	}
	fullName := directoryName(entry, cleanUsername)

	// release the directory connection before touching the database
	l.Close()
	l = nil

	u, err := s.provisionLDAPUser(ctx, mailAddr, fullName)
	if err != nil {
		return nil, nil, err
	}

	s.touchLastLogin(ctx, u.ID)

	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, "ldap", u.Roles)
	if err != nil {
		s.logr.Error("token generation failed", zap.Error(err), zap.String("user_id", u.ID.String()))
		return nil, nil, fmt.Errorf("failed to generate tokens")
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.RefreshJTI, deviceInfo); err != nil {
		s.logr.Error("failed to store refresh token", zap.Error(err), zap.String("user_id", u.ID.String()))
		return nil, nil, fmt.Errorf("failed to store session")
	}

	s.logr.Info("LDAP login successful",
		zap.String("user_id", u.ID.String()),
		zap.String("username", cleanUsername))

	info := userInfoFrom(u)
	info.Name = fullName
	info.Provider = "ldap"
	return pair, info, nil
}

func directoryName(entry *ldap.Entry, fallback string) string {
	for _, attr := range []string{"displayName", "cn"} {
		if v := strings.TrimSpace(entry.GetAttributeValue(attr)); v != "" {
			return v
		}
	}
	given := entry.GetAttributeValue("givenName")
	sn := entry.GetAttributeValue("sn")
	if full := strings.TrimSpace(given + " " + sn); full != "" {
		return full
	}
	return fallback
}

func (s *AuthService) provisionLDAPUser(ctx context.Context, email, fullName string) (*model.User, error) {
	var u model.User
	err := s.db.NewSelect().
		Model(&u).
		Column("id", "email", "provider", "name", "roles", "token_version", "created_at").
		Where("email = ?", email).
		Scan(ctx)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		u = model.User{
			ID:       uuid.New(),
			Email:    email,
			Provider: "ldap",
			Name:     fullName,
			Roles:    []string{"student"},
		}
		if _, err := s.db.NewInsert().Model(&u).Exec(ctx); err != nil {
			s.logr.Error("failed to create user", zap.Error(err))
			return nil, fmt.Errorf("failed to create user account")
		}
		s.logr.Info("created new LDAP user", zap.String("id", u.ID.String()))
	case err != nil:
		s.logr.Error("database error", zap.Error(err))
		return nil, fmt.Errorf("database error")
	case u.Provider != "ldap":
		_, _ = s.db.NewUpdate().Model(&u).
			Set("provider = ?", "ldap").
			Where("id = ?", u.ID).
			Exec(ctx)
	}
	return &u, nil
}

func (s *AuthService) touchLastLogin(ctx context.Context, id uuid.UUID) {
	now := time.Now().UTC()
	_, _ = s.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("last_login_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
}

// storeRefreshToken stores the refresh token hashed and keeps at most
// maxActiveSessions live sessions per user.
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string, expiresAt time.Time, jti string, deviceInfo string) error {
	_, _ = s.db.NewDelete().Model((*model.RefreshToken)(nil)).Where("user_id = ? AND expires_at < now()", userID).Exec(ctx)

	var count int
	err := s.db.NewSelect().ColumnExpr("count(*)").Table("refresh_tokens").Where("user_id = ? AND revoked = false AND expires_at > now()", userID).Scan(ctx, &count)
	if err == nil && count >= maxActiveSessions {
		toRemove := count - (maxActiveSessions - 1)
		_, _ = s.db.NewDelete().Model((*model.RefreshToken)(nil)).
			Where("id IN (SELECT id FROM refresh_tokens WHERE user_id = ? AND revoked = false AND expires_at > now() ORDER BY created_at ASC LIMIT ?)", userID, toRemove).
			Exec(ctx)
	}

	rt := model.RefreshToken{
		ID:         uuid.New(),
		UserID:     userID,
		JTI:        jti,
		TokenHash:  auth.HashToken(refreshToken),
		DeviceInfo: &deviceInfo,
		Revoked:    false,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  expiresAt,
	}
	_, err = s.db.NewInsert().Model(&rt).Exec(ctx)
	return err
}

// Refresh verifies a refresh token, revokes it and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, deviceInfo string) (*auth.TokenPair, error) {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims["typ"] != string(auth.RefreshToken) {
		return nil, fmt.Errorf("not a refresh token")
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token jti")
	}

	// Revoking and matching in one statement lets only one concurrent
	// refresh of the same token succeed.
	var revoked []uuid.UUID
	_, err = s.db.NewUpdate().Model((*model.RefreshToken)(nil)).
		Set("revoked = true").
		Where("jti = ? AND token_hash = ? AND revoked = false AND expires_at > now()", jti, auth.HashToken(refreshToken)).
		Returning("user_id").
		Exec(ctx, &revoked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	userID, err := rotatedUser(revoked)
	if err != nil {
		return nil, err
	}

	var u model.User
	if err := s.db.NewSelect().Model(&u).Where("id = ?", userID).Scan(ctx); err != nil {
		return nil, ErrUserNotFound
	}

	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, "refresh", u.Roles)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.RefreshJTI, deviceInfo); err != nil {
		return nil, err
	}
	return pair, nil
}

// rotatedUser returns the owner of the single session a rotation revoked.
func rotatedUser(revoked []uuid.UUID) (uuid.UUID, error) {
	if len(revoked) != 1 {
		return uuid.Nil, ErrRefreshRevoked
	}
	return revoked[0], nil
}

// Logout revokes the refresh token's session.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return err
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return fmt.Errorf("invalid jti")
	}
	_, err = s.db.NewUpdate().Model((*model.RefreshToken)(nil)).Set("revoked = true").Where("jti = ?", jti).Exec(ctx)
	return err
}

// Me returns the profile of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*UserInfo, error) {
	var u model.User
	err := s.db.NewSelect().Model(&u).Where("id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return userInfoFrom(&u), nil
}

func (s *AuthService) CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error) {
	var user model.User
	err := s.db.NewSelect().Model(&user).Column("token_version").Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return false, err
	}
	return user.TokenVersion == tokenVersion, nil
}
