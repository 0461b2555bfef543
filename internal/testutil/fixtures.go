package testutil

// ResolutionsHCL declares the fixture region and interval sets.
const ResolutionsHCL = `
settings {
  base_year = 2010
}

region_set "national" {
  region "oxford" {
    shape = [[0, 0], [0, 2], [2, 2], [2, 0]]
  }
}

region_set "half_squares" {
  region "a" {
    shape = [[0, 0], [0, 1], [1, 1], [1, 0]]
  }
  region "b" {
    shape = [[0, 1], [0, 2], [1, 2], [1, 1]]
  }
}

interval_set "annual" {
  interval "1" {
    start = "P0Y"
    end   = "P1Y"
  }
}

interval_set "seasons" {
  interval "winter" {
    start = "P11M"
    end   = "P2M"
  }
  interval "spring" {
    start = "P2M"
    end   = "P5M"
  }
  interval "summer" {
    start = "P5M"
    end   = "P8M"
  }
  interval "autumn" {
    start = "P8M"
    end   = "P11M"
  }
}
`

// WaterSupplyHCL is a scenario feeding the water_supply handler, with one
// expression output, one intervention and a narrative.
const WaterSupplyHCL = `
scenario "raininess" {
  output "raininess" {
    regions   = "national"
    intervals = "annual"
    units     = "ml"
  }
  data "raininess" {
    timestep = 2010
    values   = [[3]]
  }
  data "raininess" {
    timestep = 2015
    values   = [[1]]
  }
}

sector_model "water_supply" {
  handler = "water_supply"

  input "raininess" {
    regions   = "national"
    intervals = "annual"
    units     = "ml"
  }
  output "water" {
    regions   = "national"
    intervals = "annual"
    units     = "Ml"
  }
  output "cost" {
    regions   = "national"
    intervals = "annual"
    units     = "million GBP"
  }
  output "surplus" {
    regions    = "national"
    intervals  = "annual"
    units      = "Ml"
    expression = max(param.existing_plants - input.raininess, 0)
  }
  parameter "existing_plants" {
    default = 1
    min     = 0
    max     = 10
    units   = "count"
  }
  intervention "oxford_plant" {
    location = "oxford"
    capacity = 5
  }
}

sos_model "water" {
  models = ["raininess", "water_supply"]
  dependency {
    source = "raininess"
    output = "raininess"
    sink   = "water_supply"
    input  = "raininess"
  }
}

narrative "more_plants" {
  override {
    model     = "water_supply"
    parameter = "existing_plants"
    value     = 2
  }
}

model_run "water_baseline" {
  sos_model = "water"
  timesteps = [2015, 2010]
  plan {
    model        = "water_supply"
    intervention = "oxford_plant"
    timestep     = 2015
  }
}

model_run "water_more_plants" {
  sos_model  = "water"
  timesteps  = [2010]
  narratives = ["more_plants"]
}
`

// EnergyHCL is the cyclic fluffiness / electricity demand pair.
const EnergyHCL = `
sector_model "energy_demand" {
  handler = "energy_demand"
  input "fluffiness" {
    regions   = "national"
    intervals = "annual"
    units     = "fluff"
  }
  output "electricity_demand" {
    regions   = "national"
    intervals = "annual"
    units     = "GWh"
  }
}

sector_model "fluffiness" {
  handler = "fluffiness"
  input "electricity_demand" {
    regions   = "national"
    intervals = "annual"
    units     = "GWh"
  }
  output "fluffiness" {
    regions   = "national"
    intervals = "annual"
    units     = "fluff"
  }
  parameter "coefficient" {
    default = 0.819
  }
}

sos_model "energy" {
  models = ["fluffiness", "energy_demand"]
  dependency {
    source = "fluffiness"
    output = "fluffiness"
    sink   = "energy_demand"
    input  = "fluffiness"
  }
  dependency {
    source = "energy_demand"
    output = "electricity_demand"
    sink   = "fluffiness"
    input  = "electricity_demand"
  }
  max_iterations     = 100
  relative_tolerance = 0.00001
}

model_run "energy_baseline" {
  sos_model = "energy"
  timesteps = [2010, 2015]
}
`

// Files returns the fixture configuration as a file map for WriteFiles.
func Files() map[string]string {
	return map[string]string{
		"resolutions.hcl":   ResolutionsHCL,
		"models/water.hcl":  WaterSupplyHCL,
		"models/energy.hcl": EnergyHCL,
	}
}
