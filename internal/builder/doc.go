/*
Package builder is responsible for turning the static configuration model
(defined in the 'config' package) into runnable composites. It acts as the
bridge between configuration and the 'sos' package.

The construction is a multi-phase process:

 1. Resolutions: region sets and interval sets are parsed into one
    RegionRegister and one IntervalRegister, wrapped in a shared
    convert.Convertor. This happens once; the registers are read-only
    afterwards and shared by every run.

 2. Models: for each model run, the composite it names is built fresh,
    recursively. Scenarios become model.ScenarioModel, sector models become
    model.SectorModel backed by a registered Go handler, output
    expressions, or both, and nested sos_model blocks become nested
    sos.SosModel values. Dependencies are added and checked as they are
    built, so unknown ports and unit mismatches fail here rather than
    during simulation.

 3. Run binding: narratives are applied to the run's sector models and the
    build plan is attached to them. Timesteps are sorted and checked, and
    scenario data must cover every timestep of the run.

Upon successful completion, the builder hands a *Run to the caller, which
executes its timesteps in ascending order.
*/
package builder
