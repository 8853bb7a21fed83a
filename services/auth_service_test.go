package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-hub/models"
	"marketplace-hub/repository"

	"github.com/stretchr/testify/require"
)

func validRegistration(email, role string) RegisterInput {
	return RegisterInput{
		Name:     "Jane",
		Email:    email,
		Password: "secret123",
		Phone:    "555-0101",
		Role:     role,
	}
}

func TestRegister_DefaultsToUserAndIssuesToken(t *testing.T) {
	f := newFixture()
	res, err := f.auth().Register(context.Background(), validRegistration("  Jane@Example.com ", ""))
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, res.Role)
	require.Equal(t, "jane@example.com", res.Email)
	require.Nil(t, res.VendorData)

	userID, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.ID.Hex(), userID)

	stored, err := f.users.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.Password)
	require.True(t, stored.IsActive)
}

// A vendor registration also creates the business profile.
func TestRegister_VendorCreatesProfile(t *testing.T) {
	f := newFixture()
	in := validRegistration("shop@example.com", "vendor")
	in.BusinessName = "Toy Shop"

	res, err := f.auth().Register(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, models.RoleVendor, res.Role)
	require.NotNil(t, res.VendorData)
	require.Equal(t, "Toy Shop", res.VendorData.BusinessName)

	v, err := f.vendors.FindByUserID(context.Background(), res.ID)
	require.NoError(t, err)
	require.False(t, v.IsVerified)
}

// A failed vendor profile write removes the account so the same email can register again.
func TestRegister_VendorProfileFailureRemovesAccount(t *testing.T) {
	f := newFixture()
	f.vendors.FailCreate = errors.New("vendors collection unavailable")

	_, err := f.auth().Register(context.Background(), validRegistration("shop@example.com", "vendor"))
	requireKind(t, err, KindInternal)
	_, err = f.users.FindByEmail(context.Background(), "shop@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	f.vendors.FailCreate = nil
	res, err := f.auth().Register(context.Background(), validRegistration("shop@example.com", "vendor"))
	require.NoError(t, err)
	require.NotNil(t, res.VendorData)
}

func TestRegister_DuplicateEmailAnyCaseAnyRole(t *testing.T) {
	for _, role := range []string{"user", "vendor"} {
		t.Run(role, func(t *testing.T) {
			f := newFixture()
			_, err := f.auth().Register(context.Background(), validRegistration("jane@example.com", "user"))
			require.NoError(t, err)

			_, err = f.auth().Register(context.Background(), validRegistration("JANE@example.COM", role))
			require.ErrorIs(t, err, ErrDuplicateEmail)
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture()
	for name, mutate := range map[string]func(*RegisterInput){
		"missing name":     func(in *RegisterInput) { in.Name = " " },
		"missing email":    func(in *RegisterInput) { in.Email = "" },
		"missing password": func(in *RegisterInput) { in.Password = "" },
		"missing phone":    func(in *RegisterInput) { in.Phone = "" },
		"unknown role":     func(in *RegisterInput) { in.Role = "superuser" },
		"admin role":       func(in *RegisterInput) { in.Role = "admin" },
	} {
		t.Run(name, func(t *testing.T) {
			in := validRegistration("jane@example.com", "")
			mutate(&in)
			_, err := f.auth().Register(context.Background(), in)
			requireKind(t, err, KindValidation)
		})
	}
}

// Unknown email, wrong password and deactivated account look identical to the caller.
func TestLogin_UniformInvalidCredentials(t *testing.T) {
	f := newFixture()
	f.account(t, models.RoleUser, "jane@example.com", "right")
	inactive := f.account(t, models.RoleUser, "gone@example.com", "right")
	_, err := f.users.SetActive(context.Background(), inactive.UserID, false)
	require.NoError(t, err)

	svc := f.auth()
	_, errWrong := svc.Login(context.Background(), "jane@example.com", "wrong")
	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "right")
	_, errInactive := svc.Login(context.Background(), "gone@example.com", "right")

	for _, err := range []error{errWrong, errUnknown, errInactive} {
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	require.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestLogin_Success(t *testing.T) {
	f := newFixture()
	p := f.account(t, models.RoleUser, "jane@example.com", "right")

	res, err := f.auth().Login(context.Background(), "JANE@example.com", "right")
	require.NoError(t, err)
	require.Equal(t, p.UserID, res.ID)
	require.NotEmpty(t, res.Token)

	_, err = f.auth().Login(context.Background(), "", "right")
	requireKind(t, err, KindValidation)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	p := f.account(t, models.RoleVendor, "shop@example.com", "pw")
	svc := f.auth()

	token, err := f.tokens.Issue(p.UserID.Hex())
	require.NoError(t, err)

	got, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, p, got)

	_, err = svc.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrNotAuthorized)

	other := NewTokenManager("another-secret", time.Hour)
	forged, err := other.Issue(p.UserID.Hex())
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), forged)
	require.ErrorIs(t, err, ErrNotAuthorized)

	expired, err := NewTokenManager("test-secret", -time.Minute).Issue(p.UserID.Hex())
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), expired)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = f.users.SetActive(context.Background(), p.UserID, false)
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	p := f.account(t, models.RoleUser, "jane@example.com", "old")
	svc := f.auth()

	err := svc.ChangePassword(context.Background(), p, "wrong", "new")
	requireKind(t, err, KindUnauthorized)

	require.NoError(t, svc.ChangePassword(context.Background(), p, "old", "new"))
	_, err = svc.Login(context.Background(), "jane@example.com", "old")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), "jane@example.com", "new")
	require.NoError(t, err)
}

func TestProfileAndUpdate(t *testing.T) {
	f := newFixture()
	res, err := f.auth().Register(context.Background(), validRegistration("shop@example.com", "vendor"))
	require.NoError(t, err)
	p := Principal{UserID: res.ID, Role: res.Role}

	profile, err := f.auth().Profile(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, "shop@example.com", profile.User.Email)
	require.NotNil(t, profile.VendorData)

	u, err := f.auth().UpdateProfile(context.Background(), p, ProfileUpdate{
		Name:    "Janet",
		Address: &models.Address{City: "Pune"},
	})
	require.NoError(t, err)
	require.Equal(t, "Janet", u.Name)
	require.Equal(t, "555-0101", u.Phone)
	require.Equal(t, "Pune", u.Address.City)
}

func TestCreateAdmin(t *testing.T) {
	f := newFixture()
	res, err := f.auth().CreateAdmin(context.Background(), validRegistration("root@example.com", ""))
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, res.Role)
}
