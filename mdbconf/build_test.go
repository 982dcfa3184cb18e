package mdbconf

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	conn, err := Build(Raw{})
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, DefaultHost, conn.Host())
	assert.Equal(t, DefaultPort, conn.Port())
	assert.Equal(t, DefaultReadPreference, conn.ReadPreference())
	assert.Equal(t, DefaultDatabase, conn.Database())
	assert.Equal(t, DefaultTable, conn.Table())
	assert.Equal(t, DefaultConnectTimeout, conn.ConnectTimeout())
	assert.Equal(t, DefaultServerSelectionTimeout, conn.ServerSelectionTimeout())
	assert.False(t, conn.HasCredentials())
	_, hasTLS := conn.TLS()
	assert.False(t, hasTLS)
	assert.Equal(t, "mongodb://localhost:27017", conn.URI())
}

func TestBuildPortRange(t *testing.T) {
	for _, port := range []int{1, 80, 27017, 65535} {
		conn, err := Build(Raw{Host: "192.168.1.57", Port: strconv.Itoa(port)})
		require.NoError(t, err, "port %d", port)
		assert.Equal(t, port, conn.Port())
	}
	for _, port := range []string{"0", "-1", "65536", "many", "27017.5"} {
		conn, err := Build(Raw{Port: port})
		require.Error(t, err, "port %s", port)
		assert.ErrorIs(t, err, ErrConfig)
		assert.Nil(t, conn)
	}
}

func TestBuildCredentialPairing(t *testing.T) {
	conn, err := Build(Raw{Login: "gaAdmin", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, conn.HasCredentials())
	assert.Equal(t, DefaultAuthDatabase, conn.AuthDatabase())

	conn, err = Build(Raw{Login: "gaAdmin", Password: "secret", AuthDatabase: "users"})
	require.NoError(t, err)
	assert.Equal(t, "users", conn.AuthDatabase())

	for _, raw := range []Raw{{Login: "gaAdmin"}, {Password: "secret"}} {
		_, err := Build(raw)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfig)
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr))
		assert.Contains(t, configErr.Problems, "login and password must be supplied together")
	}
}

func TestBuildReplicaSet(t *testing.T) {
	members := []string{"192.168.1.133:27018", "192.168.1.116:27018", "192.168.1.141:27018"}
	conn, err := Build(Raw{
		ReplicaSetName:    "namasteShard1",
		ReplicaSetMembers: members,
		ReadPreference:    "secondaryPreferred",
	})
	require.NoError(t, err)
	assert.Equal(t, "namasteShard1", conn.ReplicaSetName())
	assert.Equal(t, members, conn.ReplicaSetMembers())
	assert.Equal(t,
		"mongodb://192.168.1.133:27018,192.168.1.116:27018,192.168.1.141:27018/?replicaSet=namasteShard1",
		conn.URI())

	// The member list handed out is a copy.
	conn.ReplicaSetMembers()[0] = "mutated:1"
	assert.Equal(t, members[0], conn.ReplicaSetMembers()[0])

	_, err = Build(Raw{ReplicaSetName: "namasteShard1"})
	assert.ErrorIs(t, err, ErrConfig)

	_, err = Build(Raw{ReplicaSetName: "namasteShard1", ReplicaSetMembers: []string{"no-port-here"}})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestBuildReadPreference(t *testing.T) {
	for _, pref := range []string{"primary", "primaryPreferred", "secondary", "secondaryPreferred", "nearest"} {
		conn, err := Build(Raw{ReadPreference: pref})
		require.NoError(t, err, pref)
		assert.Equal(t, pref, conn.ReadPreference())
	}
	_, err := Build(Raw{ReadPreference: "whatever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read_preference")
}

func TestBuildCollectsAllProblems(t *testing.T) {
	_, err := Build(Raw{Port: "0", Login: "gaAdmin", ReadPreference: "sideways"})
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Len(t, configErr.Problems, 3)
}

func TestBuildTLS(t *testing.T) {
	caFile, certFile := testCertFiles(t)
	no := false
	conn, err := Build(Raw{
		Host: "localhost",
		TLS: RawTLS{
			PeerName:        "localhost",
			VerifyExpiry:    &no,
			CAFile:          caFile,
			CertFile:        certFile,
			AllowSelfSigned: nil,
		},
	})
	require.NoError(t, err)
	settings, ok := conn.TLS()
	require.True(t, ok)
	assert.Equal(t, "localhost", settings.PeerName)
	assert.True(t, settings.VerifyPeer)
	assert.False(t, settings.VerifyExpiry)
	assert.True(t, settings.VerifyPeerName)
	assert.False(t, settings.AllowSelfSigned)
	assert.Contains(t, conn.String(), "tls=true")

	opts, err := conn.ClientOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "localhost", opts.TLSConfig.ServerName)
	assert.Len(t, opts.TLSConfig.Certificates, 1)
	assert.True(t, opts.TLSConfig.InsecureSkipVerify)
	assert.NotNil(t, opts.TLSConfig.VerifyPeerCertificate)
}

func TestBuildTLSProblems(t *testing.T) {
	_, err := Build(Raw{TLS: RawTLS{Enabled: true}})
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Len(t, configErr.Problems, 2)

	allow := true
	_, err = Build(Raw{TLS: RawTLS{AllowSelfSigned: &allow}})
	require.True(t, errors.As(err, &configErr), "a verification flag alone requests TLS")
	assert.ElementsMatch(t, []string{"TLS requires a peer name", "TLS requires a CA file"}, configErr.Problems)

	verify := false
	for _, flags := range []RawTLS{{VerifyPeer: &verify}, {VerifyExpiry: &verify}, {VerifyPeerName: &verify}} {
		assert.True(t, flags.Requested())
		_, err = Build(Raw{TLS: flags})
		assert.ErrorIs(t, err, ErrConfig)
	}
	assert.False(t, (&RawTLS{}).Requested())

	_, err = Build(Raw{TLS: RawTLS{PeerName: "localhost", CAFile: "/no/such/rootCA.pem"}})
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "/no/such/rootCA.pem")

	_, err = Build(Raw{TLS: RawTLS{PeerName: "localhost", CAFile: t.TempDir()}})
	require.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestConnectionString(t *testing.T) {
	conn, err := Build(Raw{Host: "192.168.1.57", Login: "gaAdmin", Password: "einstein"})
	require.NoError(t, err)
	rendered := conn.String()
	assert.NotContains(t, rendered, "einstein")
	assert.Contains(t, rendered, "gaAdmin:*****@192.168.1.57:27017")
	assert.NotContains(t, conn.URI(), "einstein")
}

func TestClientOptions(t *testing.T) {
	conn, err := Build(Raw{
		Host:           "192.168.1.57",
		Login:          "gaAdmin",
		Password:       "einstein",
		ReadPreference: "secondaryPreferred",
	})
	require.NoError(t, err)
	opts, err := conn.ClientOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.57:27017"}, opts.Hosts)
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "gaAdmin", opts.Auth.Username)
	assert.Equal(t, DefaultAuthDatabase, opts.Auth.AuthSource)
	require.NotNil(t, opts.ReadPreference)
	assert.Equal(t, "secondaryPreferred", opts.ReadPreference.Mode().String())
	assert.Nil(t, opts.TLSConfig)
}

func TestMustBuild(t *testing.T) {
	assert.NotPanics(t, func() { MustBuild(Raw{}) })
	assert.Panics(t, func() { MustBuild(Raw{Port: "none"}) })
}
