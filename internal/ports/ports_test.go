package ports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTR(t *testing.T) {
	assert.Equal(t, "IZMIR", NormalizeTR("İzmir"))
	assert.Equal(t, "IZMIR", NormalizeTR("izmir"))
	assert.Equal(t, "ISKENDERUN", NormalizeTR("İskenderun"))
	assert.Equal(t, "TEKIRDAG", NormalizeTR("Tekirdağ"))
	assert.Equal(t, "CANAKKALE", NormalizeTR("Çanakkale"))
	assert.Equal(t, "GULLUK", NormalizeTR("güllük"))
	assert.Equal(t, "KARADENIZ EREGLI", NormalizeTR("Karadeniz Ereğli"))
}

func TestIsEligible_SubstringMatch(t *testing.T) {
	agencyPorts := []string{"İZMİR"}

	assert.True(t, IsEligible(agencyPorts, "izmir liman bolgesi"))
	assert.True(t, IsEligible(agencyPorts, "İzmir"))
	assert.False(t, IsEligible(agencyPorts, "Mersin"))
}

func TestIsEligible_MultiplePorts(t *testing.T) {
	agencyPorts := []string{"Mersin", "İskenderun"}

	assert.True(t, IsEligible(agencyPorts, "iskenderun korfezi"))
	assert.True(t, IsEligible(agencyPorts, "MERSİN"))
	assert.False(t, IsEligible(agencyPorts, "Samsun"))
}

func TestIsEligible_FailOpenOnZeroPorts(t *testing.T) {
	assert.True(t, IsEligible(nil, "Mersin"))
	assert.True(t, IsEligible([]string{}, "anything at all"))
}

func TestIsEligible_IgnoresEmptyRegisteredPort(t *testing.T) {
	// An empty registered name must not match every demand.
	assert.False(t, IsEligible([]string{""}, "Mersin"))
	assert.True(t, IsEligible([]string{"", "Mersin"}, "Mersin"))
}
