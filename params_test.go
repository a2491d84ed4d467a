package ld2410

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parametersValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       Parameters
		wantErr bool
	}{
		{"valid", Parameters{MaxDistanceGate: 8, MaxMovingGate: 8, MaxStaticGate: 8}, false},
		{"valid zero", Parameters{}, false},
		{"distance gate too high", Parameters{MaxDistanceGate: 9}, true},
		{"moving gate exceeds distance", Parameters{MaxDistanceGate: 3, MaxMovingGate: 4}, true},
		{"static gate exceeds distance", Parameters{MaxDistanceGate: 3, MaxStaticGate: 4}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				var paramErr *CommandParamError
				assert.True(t, errors.As(err, &paramErr))
				assert.ErrorIs(t, err, ErrCommandParam)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
