// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package i18n

var english = bundle{
	messages: map[Key]string{
		KeyToolNotFound:        "The requested tool is not available.",
		KeyToolExecutionFailed: "The tool failed while running.",
		KeyInvalidParameters:   "The request is missing information or has invalid values.",
		KeyContextUnavailable:  "There is no page content or selection to work with.",
		KeyLLMError:            "The language model service is unavailable right now.",
		KeyTimeout:             "The operation took too long and was stopped.",
		KeyAborted:             "The operation was cancelled.",
		KeyUnknown:             "Something went wrong.",
		KeyCancelled:           "Stopped. Let me know what you would like to do next.",
		KeyGreeting:            "Hi! I can summarize pages, extract data, draft replies and search your saved notes.",
		KeyToolDone:            "%s finished.",
		KeySuggestions:         "Suggestions:",
		KeyThinking:            "Thinking...",
		KeyRunningTool:         "Running %s...",
		KeyNoPageContext:       "Open a page or select some text first.",
		KeyNoPost:              "Open a post before asking for a reply.",
		KeyBlocked:             "I can't help with that request.",
	},
	suggestions: map[Key][]string{
		KeyToolNotFound:        {"Try rephrasing your request", "Ask what I can do"},
		KeyToolExecutionFailed: {"Try again", "Check the page is fully loaded"},
		KeyInvalidParameters:   {"Add the missing details to your request"},
		KeyContextUnavailable:  {"Open the page you want to work with", "Select the text you want to use"},
		KeyLLMError:            {"Wait a moment and try again", "Check your API key or quota"},
		KeyTimeout:             {"Try again", "Try a smaller piece of content"},
		KeyAborted:             {"Send the request again when ready"},
		KeyUnknown:             {"Try again", "Reload the page"},
	},
}

var spanish = bundle{
	messages: map[Key]string{
		KeyToolNotFound:        "La herramienta solicitada no está disponible.",
		KeyToolExecutionFailed: "La herramienta falló durante la ejecución.",
		KeyInvalidParameters:   "Faltan datos en la petición o tiene valores no válidos.",
		KeyContextUnavailable:  "No hay contenido de página ni selección con la que trabajar.",
		KeyLLMError:            "El servicio del modelo de lenguaje no está disponible ahora.",
		KeyTimeout:             "La operación tardó demasiado y se detuvo.",
		KeyAborted:             "La operación se canceló.",
		KeyUnknown:             "Algo salió mal.",
		KeyCancelled:           "Detenido. Dime qué quieres hacer ahora.",
		KeyGreeting:            "¡Hola! Puedo resumir páginas, extraer datos, redactar respuestas y buscar en tus notas.",
		KeyToolDone:            "%s terminado.",
		KeySuggestions:         "Sugerencias:",
		KeyThinking:            "Pensando...",
		KeyRunningTool:         "Ejecutando %s...",
		KeyNoPageContext:       "Abre una página o selecciona algún texto primero.",
		KeyNoPost:              "Abre una publicación antes de pedir una respuesta.",
		KeyBlocked:             "No puedo ayudar con esa solicitud.",
	},
	suggestions: map[Key][]string{
		KeyToolNotFound:        {"Reformula la petición", "Pregunta qué puedo hacer"},
		KeyToolExecutionFailed: {"Inténtalo de nuevo", "Comprueba que la página ha cargado"},
		KeyInvalidParameters:   {"Añade los datos que faltan"},
		KeyContextUnavailable:  {"Abre la página con la que quieres trabajar", "Selecciona el texto que quieres usar"},
		KeyLLMError:            {"Espera un momento e inténtalo de nuevo", "Revisa tu clave de API o cuota"},
		KeyTimeout:             {"Inténtalo de nuevo", "Prueba con menos contenido"},
		KeyAborted:             {"Envía la petición de nuevo cuando quieras"},
		KeyUnknown:             {"Inténtalo de nuevo", "Recarga la página"},
	},
}

var chinese = bundle{
	messages: map[Key]string{
		KeyToolNotFound:        "请求的工具不可用。",
		KeyToolExecutionFailed: "工具执行失败。",
		KeyInvalidParameters:   "请求缺少信息或参数无效。",
		KeyContextUnavailable:  "当前没有可用的页面内容或选中文本。",
		KeyLLMError:            "语言模型服务暂时不可用。",
		KeyTimeout:             "操作超时，已停止。",
		KeyAborted:             "操作已取消。",
		KeyUnknown:             "出现了问题。",
		KeyCancelled:           "已停止。请告诉我接下来要做什么。",
		KeyGreeting:            "你好！我可以总结页面、提取数据、撰写回复和搜索你的笔记。",
		KeyToolDone:            "%s 已完成。",
		KeySuggestions:         "建议：",
		KeyThinking:            "思考中...",
		KeyRunningTool:         "正在执行 %s...",
		KeyNoPageContext:       "请先打开页面或选中文本。",
		KeyNoPost:              "请先打开一条帖子再生成回复。",
		KeyBlocked:             "我无法处理这个请求。",
	},
	suggestions: map[Key][]string{
		KeyToolNotFound:        {"换一种说法", "问问我能做什么"},
		KeyToolExecutionFailed: {"重试", "确认页面已完全加载"},
		KeyInvalidParameters:   {"补充缺少的信息"},
		KeyContextUnavailable:  {"打开要处理的页面", "选中要使用的文本"},
		KeyLLMError:            {"稍后重试", "检查 API 密钥或配额"},
		KeyTimeout:             {"重试", "尝试更少的内容"},
		KeyAborted:             {"准备好后重新发送请求"},
		KeyUnknown:             {"重试", "刷新页面"},
	},
}
