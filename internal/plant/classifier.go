package plant

// classify produces the current plant condition from the latest sample, the
// recent daily summaries and the previous condition.
//
// The rules are evaluated in strict priority order; the first match wins.
// Temperature limits outrank every moisture rule, and watering-completed
// detection outranks the dry-day escalation. Reordering these changes the
// observable behavior, so don't.
func classify(prev Condition, profile PlantProfile, latest Sample, hasSample bool, summaries []DailySummary) Condition {
	// 1. Nothing usable to classify.
	if !hasSample || !latest.Usable() {
		return ConditionError
	}

	// 2–3. Hard temperature limits.
	if latest.Temperature.Valid {
		if latest.Temperature.Value >= profile.TempHighLimit {
			return TempTooHigh
		}
		if latest.Temperature.Value <= profile.TempLowLimit {
			return TempTooLow
		}
	}

	soil := latest.SoilMoisture

	// 4. A previously dry plant whose soil is now wet was just watered.
	if (prev == SoilDry || prev == NeedsWatering) && soil.Valid && soil.Value <= profile.SoilWetThreshold {
		return WateringCompleted
	}

	// 5. Escalate to watering after enough dry days, but only once the full
	// requested window of summaries exists.
	window := profile.SoilDryDaysForWatering
	dryDays := 0
	for _, day := range summaries {
		if day.AvgSoilMoisture >= profile.SoilDryThreshold {
			dryDays++
		}
	}
	if len(summaries) >= window && dryDays >= window {
		return NeedsWatering
	}

	// 6–7. Plain threshold classification.
	if soil.Valid {
		if soil.Value >= profile.SoilDryThreshold {
			return SoilDry
		}
		if soil.Value <= profile.SoilWetThreshold {
			return SoilWet
		}
	}

	// 8. Moisture inside the hysteresis band (or soil reading errored):
	// keep the previous verdict to avoid flapping near a threshold.
	return prev
}

// analyzePhase derives the growth phase from up to the last 7 daily
// summaries. Days without any valid sample are skipped.
func analyzePhase(profile PlantProfile, summaries []DailySummary) GrowthPhase {
	highTempDays := 0
	activeStreak := 0
	bestActiveStreak := 0
	seen := 0

	for _, day := range summaries {
		if day.ValidSamples == 0 {
			continue
		}
		seen++

		// A single scorching day is enough for high-temp dormancy.
		if day.MaxTemperature >= profile.HighTempDormancyMaxTemp {
			return PhaseHighTempDormancy
		}
		if day.MinTemperature >= profile.HighTempDormancyMinTemp {
			highTempDays++
		}

		// A single freezing day is enough for low-temp dormancy.
		if day.MinTemperature <= profile.LowTempDormancyMinTemp {
			return PhaseLowTempDormancy
		}

		if day.MinTemperature >= profile.ActivePeriodMinTemp &&
			day.MaxTemperature <= profile.ActivePeriodMaxTemp {
			activeStreak++
			if activeStreak > bestActiveStreak {
				bestActiveStreak = activeStreak
			}
		} else {
			activeStreak = 0
		}
	}

	if seen == 0 {
		return PhaseUnknown
	}
	if highTempDays >= profile.HighTempDormancyMinTempDays {
		return PhaseHighTempDormancy
	}
	if bestActiveStreak >= profile.ActivePeriodConsecutiveDays {
		return PhaseActivePeriod
	}
	return PhaseUnknown
}
