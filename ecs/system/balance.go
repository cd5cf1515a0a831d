package system

import "github.com/milk9111/ragdoll/ecs/component"

const (
	balanceIdle stateID = iota
	balanceBalancing
	balanceFalling
	balanceCleanup
)

var balanceStates = newStateTable("Balance", balanceIdle, balanceCleanup, []stateDef[*BalancePerformance]{
	balanceIdle:      {name: "IDLE"},
	balanceBalancing: {name: "BALANCING", enter: (*BalancePerformance).enterBalancing, exit: (*BalancePerformance).exitDrive},
	balanceFalling:   {name: "FALLING", enter: (*BalancePerformance).enterFalling, exit: (*BalancePerformance).exitDrive},
	balanceCleanup:   {name: "CLEANUP", update: cleanupToIdle[*BalancePerformance](balanceIdle)},
})

// BalancePerformance keeps the actor on its feet, windmilling the arms when
// it starts unsupported. It ignores events.
type BalancePerformance struct {
	performance
	machine stateMachine[*BalancePerformance]
	params  component.BalanceParams
}

func newBalancePerformance(owner *Controller) *BalancePerformance {
	p := &BalancePerformance{performance: performance{owner: owner}}
	p.machine = newStateMachine(balanceStates, p)
	p.machine.hook = owner.trace
	return p
}

func (p *BalancePerformance) Type() component.PerformanceType { return component.PerformanceBalance }
func (p *BalancePerformance) State() string                   { return p.machine.CurrentName() }

func (p *BalancePerformance) SetParams(params component.BalanceParams) {
	p.params = params
}

func (p *BalancePerformance) Start() {
	if _, supported := p.phys().Support(); supported {
		p.machine.ManualTransition(balanceBalancing)
		return
	}
	p.machine.ManualTransition(balanceFalling)
}

func (p *BalancePerformance) Stop()                     { p.machine.ManualTransition(balanceCleanup) }
func (p *BalancePerformance) Think(dt float64)          { p.machine.Advance(dt) }
func (p *BalancePerformance) OnEvent(_ component.Event) {}

func (p *BalancePerformance) enterBalancing() {
	p.mustStart(component.BehaviorStaggerBalance, nil)
}

func (p *BalancePerformance) enterFalling() {
	p.mustStart(component.BehaviorStaggerBalance, nil)
	p.mustStart(component.BehaviorLandingFall, nil)
}

func (p *BalancePerformance) exitDrive() {
	p.anim().StopAllBehaviors()
}
