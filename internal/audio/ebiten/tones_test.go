package ebiten

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/lumen/internal/audio"
)

func TestSynthesizeProducesStereoPCM(t *testing.T) {
	pcm := synthesize(tone{freq: 440, duration: 0.1, volume: 0.5})
	require.Len(t, pcm, int(0.1*sampleRate)*4)

	for i := 0; i < len(pcm); i += 4 {
		left := binary.LittleEndian.Uint16(pcm[i:])
		right := binary.LittleEndian.Uint16(pcm[i+2:])
		if left != right {
			t.Fatalf("sample %d: channels differ (%d vs %d)", i/4, left, right)
		}
	}
}

func TestSynthesizeFadesOut(t *testing.T) {
	pcm := synthesize(tone{freq: 440, duration: 0.2, volume: 1})
	last := int16(binary.LittleEndian.Uint16(pcm[len(pcm)-4:]))
	assert.InDelta(t, 0, float64(last), 400, "tail should be nearly silent")
}

func TestEveryEffectHasATone(t *testing.T) {
	for e := audio.EffectWalk; e <= audio.EffectUIButtonPress; e++ {
		_, ok := effectTones[e]
		assert.True(t, ok, "missing tone for %s", e)
	}
}
