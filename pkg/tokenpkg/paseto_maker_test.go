package tokenpkg

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-petr/bank-registry/pkg/randompkg"
)

func TestPasetoMaker(t *testing.T) {
	t.Parallel()

	secretKey := randompkg.String(32)

	maker, err := NewPasetoMaker(secretKey)
	if err != nil {
		t.Fatalf("NewPasetoMaker(%v) returned error: %v", secretKey, err)
	}

	passport := randompkg.Passport()
	duration := time.Minute

	token, payload, err := maker.CreateToken(passport, duration)
	if err != nil {
		t.Fatalf("maker.CreateToken(%v, %v) returned error: %v", passport, duration, err)
	}

	verified, err := maker.VerifyToken(token)
	if err != nil {
		t.Fatalf("maker.VerifyToken(%v) returned error: %v", token, err)
	}

	want := &Payload{
		Passport:  passport,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	ignore := cmpopts.IgnoreFields(Payload{}, "ID")
	delta := cmpopts.EquateApproxTime(time.Minute)

	if diff := cmp.Diff(want, verified, ignore, delta); diff != "" {
		t.Errorf("maker.VerifyToken(%v) payload mismatch (-want +got):\n%s", token, diff)
	}

	if verified.ID != payload.ID {
		t.Errorf("verified.ID = %v, want %v", verified.ID, payload.ID)
	}
}

func TestExpiredPasetoToken(t *testing.T) {
	t.Parallel()

	maker, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker() returned error: %v", err)
	}

	token, _, err := maker.CreateToken(randompkg.Passport(), -time.Minute)
	if err != nil {
		t.Fatalf("maker.CreateToken() returned error: %v", err)
	}

	if _, err = maker.VerifyToken(token); err != ErrExpiredToken {
		t.Errorf("maker.VerifyToken(%v) returned error %v, want %v", token, err, ErrExpiredToken)
	}
}

func TestPasetoTokenWrongKey(t *testing.T) {
	t.Parallel()

	maker1, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker() returned error: %v", err)
	}

	maker2, err := NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("NewPasetoMaker() returned error: %v", err)
	}

	token, _, err := maker1.CreateToken(randompkg.Passport(), time.Minute)
	if err != nil {
		t.Fatalf("maker1.CreateToken() returned error: %v", err)
	}

	if _, err = maker2.VerifyToken(token); err != ErrInvalidToken {
		t.Errorf("maker2.VerifyToken(%v) returned error %v, want %v", token, err, ErrInvalidToken)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	key := randompkg.String(32)

	testCases := []struct {
		kind    string
		wantErr bool
	}{
		{kind: "", wantErr: false},
		{kind: "paseto", wantErr: false},
		{kind: "jwt", wantErr: false},
		{kind: "macaroon", wantErr: true},
	}

	for _, tc := range testCases {
		maker, err := New(tc.kind, key)
		if (err != nil) != tc.wantErr {
			t.Errorf("New(%q) returned error %v, wantErr %v", tc.kind, err, tc.wantErr)
			continue
		}

		if tc.wantErr {
			continue
		}

		token, _, err := maker.CreateToken("1234567890", time.Minute)
		if err != nil {
			t.Fatalf("New(%q).CreateToken() returned error: %v", tc.kind, err)
		}

		if _, err := maker.VerifyToken(token); err != nil {
			t.Errorf("New(%q).VerifyToken() returned error: %v", tc.kind, err)
		}
	}
}
