package effects

// Cost classes give the scheduler and UI a rough sense of how expensive an
// effect is to render. They do not change the subprocess budget.
const (
	CostLight = "light"
	CostHeavy = "heavy"
)

// builtin is the fixed catalog, in presentation order. Filter graphs that
// change the sample rate deliberately leave the tempo uncompensated, so pitch
// and speed shift together like a slowed tape.
var builtin = []Effect{
	{ID: "muffled_light", DisplayName: "🔇 Muffled (Light)", FilterArgs: "lowpass=f=1500,volume=-3dB", CostClass: CostLight},
	{ID: "muffled_medium", DisplayName: "🔇 Muffled (Medium)", FilterArgs: "lowpass=f=800,volume=-3dB", CostClass: CostLight},
	{ID: "muffled_heavy", DisplayName: "🔇 Muffled (Heavy)", FilterArgs: "lowpass=f=400,volume=-3dB", CostClass: CostLight},
	{ID: "underwater", DisplayName: "🌊 Underwater", FilterArgs: "lowpass=f=300,volume=-6dB", CostClass: CostLight},
	{ID: "phone", DisplayName: "📞 Phone/Radio", FilterArgs: "highpass=f=300,lowpass=f=3000,acompressor,volume=-2dB", CostClass: CostLight},
	{ID: "echo", DisplayName: "🔊 Echo", FilterArgs: "aecho=0.8:0.5:300:0.5", CostClass: CostLight},
	{ID: "reverb", DisplayName: "🎭 Reverb (Hall)", FilterArgs: "aecho=0.8:0.88:50|100|150|200|250:0.3|0.25|0.2|0.15|0.1", CostClass: CostHeavy},
	{ID: "speed_fast", DisplayName: "⚡ Speed Up (1.5x)", FilterArgs: "asetrate=44100*1.5,aresample=44100", CostClass: CostLight},
	{ID: "speed_slow", DisplayName: "🐌 Slow Down (0.7x)", FilterArgs: "asetrate=44100*0.7,aresample=44100", CostClass: CostLight},
	{ID: "pitch_up", DisplayName: "⬆️ Pitch Up", FilterArgs: "asetrate=44100*1.18921,aresample=44100", CostClass: CostLight},
	{ID: "pitch_down", DisplayName: "⬇️ Pitch Down", FilterArgs: "asetrate=44100*0.840896,aresample=44100", CostClass: CostLight},
	{ID: "nightmare", DisplayName: "👻 Nightmare Mode", FilterArgs: "asetrate=44100*0.524408,aresample=44100,aecho=0.8:0.88:50|100|150|200|250:0.3|0.25|0.2|0.15|0.1,volume=-3dB", CostClass: CostHeavy},
}
