// Package main 启动应用程序
package main

import "github.com/yeisme/xianshiji/pkg/cmd"

//	@title			Xianshiji API
//	@version		1.0
//	@description	鲜食记：家庭食材库存、保质期预警与菜谱管理服务。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

//	@contact.name	yeisme
//	@contact.email	yefun2004@gmail.com.

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
