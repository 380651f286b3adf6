package script

import "strings"

// DefaultPrompt asks the model to rewrite digits and Latin words as Chinese
// homophones and to turn the chapter into an audiobook JSON array.
const DefaultPrompt = `请将我提供的 （小说文本） （1）所有的英文和数字都必须改写成谐音的中文（但是中文不要再改成谐音中文了），比如第2章改成“第二章”（但是第10章改成“十”而不是“一零”），java改成“加瓦”，unicode改成“油泥扣”，“C++”改成西加加，json改成接省。但是不要把"1933年"擅自添加成"1933年轻"。 （2）最重要的，是把原本我输入的txt文件，转换为有声书JSON格式输出，需要严格按照以下要求进行转换： 1. 输出格式必须是有效的JSON数组，每个对话或旁白为一个对象 2. 每个对象必须包含以下字段： - speaker: 说话者姓名（如"旁白"、角色名等） - content: 对话或旁白内容 - tone: 语气描述（如"neutral"表示中性，或其他情感描述） - intensity: 语气强度，范围1-10的整数值 - delay: 语音之间的停顿时间（毫秒） 3. 旁白部分： - speaker设置为"旁白" - tone通常设置为"neutral" - intensity通常设置为5（中等强度） - delay根据内容长度和情境设置，通常在300-800毫秒之间 4. 角色对话部分： - speaker设置为角色名称 - tone需要根据对话内容和情境描述具体情感（如"愤怒"、"惊讶"、"低声念叨"等） - intensity根据情感强度设置，范围1-10 - delay根据对话节奏设置，通常在400-1500毫秒之间 5. 长段落处理规则： - 超过100个字的段落应拆分为多个对象 - 拆分时保持同一个speaker - 拆分时保持相同的tone和intensity - 拆分点应选择在自然停顿处（如句号、逗号后） - 每个拆分后的片段不应超过80-100个字 6. 特殊要求： - 所有引号必须正确转义 - 不要添加额外的字段 - 保持原文的语意完整性 - 内容中除了，。！？和... 不要有其它的标点符号，但是一行字里不要用空格空开，要用标点符号表示间隔和结束。 - 对于情感强烈的对话，适当提高intensity值 - 对于重要或情感转折的对话，适当增加delay值 请确保输出的JSON格式完全符合上述规范，可以直接用于有声书制作系统。模板示例如下： [ { "speaker": "旁白", "content": "章节标题", "tone": "neutral", "intensity": 3, "delay": 500 }, { "speaker": "旁白", "content": "场景描述文本", "tone": "neutral", "intensity": 5, "delay": 500 }, { "speaker": "角色名", "content": "角色对话内容", "tone": "具体情感描述", "intensity": 7, "delay": 800 } ]`

// BuildPrompt wraps the chapter text with the instructions.
func BuildPrompt(custom string, text string) string {
	b := strings.Builder{}
	b.WriteString("\n")
	b.WriteString(custom)
	b.WriteString("\n\n以下是需要处理的小说文本：\n")
	b.WriteString(text)
	b.WriteString("\n\n请严格按照上述要求处理，输出完整的JSON格式。\n")
	return b.String()
}
