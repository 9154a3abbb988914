package credential

import (
	"jmssh/backend/internal/types"
)

// Credential 是一次连接要交给 sshpass 的密码
type Credential struct {
	HopID    uint
	Password string
	Found    bool
}

// PasswordHop 返回需要查询密码的那一跳：单跳链路中的唯一一跳，
// 或多跳链路中的第一个跳板；且它的认证方式必须是 password。
// 其余 hop 即使是 password 模式也不会查询，sshpass 只能应答一次密码提示。
func PasswordHop(plan types.ConnectPlan) (types.ConnectHop, bool) {
	if len(plan.Hops) == 0 {
		return types.ConnectHop{}, false
	}
	hop := plan.Hops[0]
	if hop.AuthMode != types.AuthPassword {
		return types.ConnectHop{}, false
	}
	return hop, true
}

// Resolve 查询计划所需的密码。没有需要密码的 hop 时返回零值；
// 钥匙串中没有条目时 Found 为 false，只有存储本身失败才返回错误。
func Resolve(s Store, plan types.ConnectPlan) (Credential, error) {
	hop, ok := PasswordHop(plan)
	if !ok {
		return Credential{}, nil
	}
	pw, found, err := s.Get(hop.ID)
	if err != nil {
		return Credential{HopID: hop.ID}, err
	}
	return Credential{HopID: hop.ID, Password: pw, Found: found}, nil
}
